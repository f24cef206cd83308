package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/library-service/internal/config"
	"github.com/Dan9191/library-service/internal/export"
	"github.com/Dan9191/library-service/internal/models"
)

const reportTimeout = 2 * time.Minute

// Catalog returns every book in the catalog.
type Catalog interface {
	All(ctx context.Context) ([]models.Book, error)
}

// Mailer delivers the rendered catalog report.
type Mailer interface {
	SendCatalogReport(to string, catalog []byte, bookCount int, generatedAt time.Time) error
}

// Scheduler runs the periodic catalog report
type Scheduler struct {
	cron    *cron.Cron
	cfg     config.ReportConfig
	catalog Catalog
	mailer  Mailer
	log     *logrus.Logger
	now     func() time.Time
}

// NewScheduler registers the catalog report job. It returns an error if the
// cron expression cannot be parsed.
func NewScheduler(cfg config.ReportConfig, catalog Catalog, mailer Mailer, log *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithLogger(cron.PrintfLogger(log))),
		cfg:     cfg,
		catalog: catalog,
		mailer:  mailer,
		log:     log,
		now:     time.Now,
	}
	if cfg.Cron == "" {
		return s, nil
	}
	if _, err := s.cron.AddFunc(cfg.Cron, s.runReport); err != nil {
		return nil, fmt.Errorf("invalid REPORT_CRON %q: %w", cfg.Cron, err)
	}
	return s, nil
}

// Start begins running scheduled jobs in the background
func (s *Scheduler) Start() {
	if len(s.cron.Entries()) == 0 {
		s.log.Info("Catalog report disabled")
		return
	}
	s.cron.Start()
	s.log.Infof("Catalog report scheduled: %s -> %s", s.cfg.Cron, s.cfg.Recipient)
}

// Stop halts the scheduler and waits for a running job until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runReport() {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()
	if err := s.SendReport(ctx); err != nil {
		s.log.Errorf("Catalog report failed: %v", err)
	}
}

// SendReport exports the whole catalog and mails it to the configured recipient
func (s *Scheduler) SendReport(ctx context.Context) error {
	books, err := s.catalog.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	at := s.now()
	doc, err := export.CatalogXML(books, at)
	if err != nil {
		return err
	}
	if err := s.mailer.SendCatalogReport(s.cfg.Recipient, doc, len(books), at); err != nil {
		return err
	}
	s.log.WithField("books", len(books)).Info("Catalog report sent")
	return nil
}
