package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/agrotrack/feedengine/internal/domain/models"
	repo "github.com/agrotrack/feedengine/internal/repository/sheets"
)

const (
	ledgerExportRange = "Consumption!A:F"
	dateLayout        = models.DayLayout
)

// Ledger defines the consumption history reads required for reporting.
type Ledger interface {
	ConsumptionRange(ctx context.Context, start, end time.Time) ([]models.DailyConsumption, error)
	FeedTypes(ctx context.Context) ([]models.FeedType, error)
}

// Service aggregates the daily consumption ledger for summaries and exports
// it for the reorder-suggestion analytics downstream.
type Service struct {
	ledger   Ledger
	exporter repo.Repository
	logger   *zap.Logger
}

// NewService wires a new reporting service instance. exporter may be nil when
// the spreadsheet export is not configured.
func NewService(ledger Ledger, exporter repo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ledger: ledger, exporter: exporter, logger: logger}
}

// Summary aggregates consumed quantity and cost per feed type over [start, end].
func (s *Service) Summary(ctx context.Context, start, end time.Time) (models.ConsumptionSummary, error) {
	rows, err := s.ledger.ConsumptionRange(ctx, start, end)
	if err != nil {
		return models.ConsumptionSummary{}, fmt.Errorf("load consumption range: %w", err)
	}

	names, err := s.feedTypeNames(ctx)
	if err != nil {
		return models.ConsumptionSummary{}, err
	}

	summary := models.ConsumptionSummary{
		Start: start.Format(dateLayout),
		End:   end.Format(dateLayout),
	}

	perFeed := make(map[string]*models.FeedConsumptionSummary)
	for _, row := range rows {
		feed, ok := perFeed[row.FeedTypeID]
		if !ok {
			feed = &models.FeedConsumptionSummary{
				FeedTypeID:   row.FeedTypeID,
				FeedTypeName: names[row.FeedTypeID],
			}
			perFeed[row.FeedTypeID] = feed
		}
		feed.Quantity += row.Quantity
		feed.Cost += row.Cost
		summary.TotalQuantity += row.Quantity
		summary.TotalCost += row.Cost
	}

	for _, feed := range perFeed {
		summary.Feeds = append(summary.Feeds, *feed)
	}
	sort.Slice(summary.Feeds, func(i, j int) bool {
		return summary.Feeds[i].FeedTypeID < summary.Feeds[j].FeedTypeID
	})

	return summary, nil
}

// ExportLedger appends the ledger rows of [start, end] to the export
// spreadsheet and returns how many rows were written.
func (s *Service) ExportLedger(ctx context.Context, start, end time.Time) (int, error) {
	if s.exporter == nil {
		return 0, fmt.Errorf("ledger export is not configured")
	}

	rows, err := s.ledger.ConsumptionRange(ctx, start, end)
	if err != nil {
		return 0, fmt.Errorf("load consumption range: %w", err)
	}
	if len(rows) == 0 {
		s.logger.Info("no consumption rows to export",
			zap.String("start", start.Format(dateLayout)), zap.String("end", end.Format(dateLayout)))
		return 0, nil
	}

	names, err := s.feedTypeNames(ctx)
	if err != nil {
		return 0, err
	}

	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		enclosure := ""
		if row.EnclosureID != nil {
			enclosure = *row.EnclosureID
		}
		values = append(values, []interface{}{
			row.Date.Format(dateLayout),
			row.FeedTypeID,
			names[row.FeedTypeID],
			enclosure,
			row.Quantity,
			row.Cost,
		})
	}

	if err := s.exporter.AppendRows(ctx, ledgerExportRange, values); err != nil {
		return 0, fmt.Errorf("export ledger rows: %w", err)
	}

	s.logger.Info("consumption ledger exported", zap.Int("rows", len(values)))
	return len(values), nil
}

func (s *Service) feedTypeNames(ctx context.Context) (map[string]string, error) {
	types, err := s.ledger.FeedTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load feed types: %w", err)
	}
	names := make(map[string]string, len(types))
	for _, ft := range types {
		names[ft.ID] = ft.Name
	}
	return names, nil
}
