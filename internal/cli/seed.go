package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"vocab-quiz-service/internal/app"
	"vocab-quiz-service/internal/config"
	"vocab-quiz-service/internal/logging"
)

// errSeedNeedsPostgres stops a seed that would only fill an in-process store.
var errSeedNeedsPostgres = errors.New("seed requires postgres.url; the in-memory store is discarded on exit")

// NewSeedCmd writes the vocabulary bank into an empty question store.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the question bank if it is empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logging.New(cfg.Log.Level, cfg.Log.Format)
			if cfg.Postgres.URL == "" {
				log.Error("seed needs a persistent question store")
				return errSeedNeedsPostgres
			}

			st, err := openStores(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer st.close()

			written, err := app.NewQuestionBank(st.questions, log).EnsureSeeded(cmd.Context())
			if err != nil {
				return err
			}
			if written == 0 {
				log.Info("question bank already populated")
			}
			return nil
		},
	}
}
