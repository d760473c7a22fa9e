package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	"hiraya/internal/config"
	"hiraya/internal/database"
	"hiraya/internal/examdata"
	"hiraya/internal/logger"
	"hiraya/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type stats struct {
	providers int64
	exams     int64
	topics    int64
}

func main() {
	rootDir := flag.String("providers", "providers", "root directory of provider exam JSON files")
	concurrency := flag.Int("concurrency", 4, "number of provider directories processed in parallel")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	db, err := database.NewSQLXPostgresDB(cfg.DB, cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	contentRepo := repository.NewSQLXContentRepository(db)

	entries, err := os.ReadDir(*rootDir)
	if err != nil {
		appLogger.Fatal("Failed to read providers directory", zap.String("dir", *rootDir), zap.Error(err))
	}

	var counts stats
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*concurrency)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		providerName := entry.Name()
		providerDir := filepath.Join(*rootDir, providerName)

		g.Go(func() error {
			return loadProvider(ctx, contentRepo, providerName, providerDir, &counts)
		})
	}

	if err := g.Wait(); err != nil {
		appLogger.Fatal("Provider migration failed", zap.Error(err))
	}

	appLogger.Info("Provider migration completed",
		zap.Int64("providers", atomic.LoadInt64(&counts.providers)),
		zap.Int64("exams", atomic.LoadInt64(&counts.exams)),
		zap.Int64("topics", atomic.LoadInt64(&counts.topics)),
	)
}

// loadProvider parses one provider directory and upserts its exams and
// topics. Per-exam failures are logged and skipped so one bad file cannot
// abort the rest of the run.
func loadProvider(ctx context.Context, contentRepo repository.ContentRepository, providerName, providerDir string, counts *stats) error {
	appLogger := logger.Get()
	appLogger.Info("Processing provider", zap.String("provider", providerName))

	groups, err := examdata.LoadProviderDir(providerDir, func(fileName string, err error) {
		appLogger.Error("Skipping exam file", zap.String("file", fileName), zap.Error(err))
	})
	if err != nil {
		return err
	}

	provider, err := contentRepo.UpsertProvider(ctx, providerName, examdata.IsPopularProvider(providerName))
	if err != nil {
		return err
	}
	atomic.AddInt64(&counts.providers, 1)

	for _, group := range groups {
		examID := examdata.ExamID(providerName, group.Title, group.Code)
		exam := group.ToExam(examID, provider.ID)

		if err := contentRepo.UpsertExam(ctx, &exam); err != nil {
			appLogger.Error("Skipping exam", zap.String("examID", examID), zap.Error(err))
			continue
		}
		atomic.AddInt64(&counts.exams, 1)

		for _, topic := range group.Topics {
			if err := contentRepo.UpsertTopic(ctx, examID, topic.Number, topic.Questions); err != nil {
				appLogger.Error("Skipping topic",
					zap.String("examID", examID), zap.Int("topic", topic.Number), zap.Error(err))
				continue
			}
			atomic.AddInt64(&counts.topics, 1)
		}
	}
	return nil
}
