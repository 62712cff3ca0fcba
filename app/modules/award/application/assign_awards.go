package awardservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	awarddomain "github.com/Black-And-White-Club/step-bot/app/modules/award/domain"
	awarddb "github.com/Black-And-White-Club/step-bot/app/modules/award/infrastructure/repositories"
	gridservice "github.com/Black-And-White-Club/step-bot/app/modules/grid/application"
	reportdomain "github.com/Black-And-White-Club/step-bot/app/modules/report/domain"
	"github.com/Black-And-White-Club/step-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/step-bot/internal/results"
	"github.com/uptrace/bun"
)

type awardResult = results.OperationResult[AwardRun, error]

// AssignAwards recomputes the medals of date. Awards are stored before the
// grid is touched; grid failures are counted in the run and do not abort it.
func (s *AwardService) AssignAwards(ctx context.Context, date time.Time) (AwardRun, error) {
	day := reportdomain.Day(date)

	result, err := withTelemetry(s, ctx, "AssignAwards", day, func(ctx context.Context) (awardResult, error) {
		rows, err := s.reports.FindReports(ctx, nil, day, day.AddDate(0, 0, 1))
		if err != nil {
			return awardResult{}, fmt.Errorf("failed to load reports: %w", err)
		}
		reports := make([]reportdomain.Report, len(rows))
		for i, row := range rows {
			reports[i] = row.ToDomain()
		}

		awards := awarddomain.AssignAwards(reports)

		storeTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[int, error], error) {
			return s.storeAwards(ctx, db, day, awards)
		}
		stored, err := runInTx(s, ctx, storeTx)
		if err != nil {
			return awardResult{}, fmt.Errorf("failed to store awards: %w", err)
		}

		run := AwardRun{Date: day, Awards: awards, Removed: *stored.Success}
		run.AnnotationFailures = s.annotateAll(ctx, reports, awards)
		run.Summary, _ = awarddomain.FormatSummary(day, awards)

		s.metrics.RecordAwardsAssigned(ctx, len(awards))
		return results.SuccessResult[AwardRun, error](run), nil
	})
	if err != nil {
		return AwardRun{Date: day}, err
	}
	return *result.Success, nil
}

func (s *AwardService) storeAwards(ctx context.Context, db bun.IDB, day time.Time, awards []awarddomain.Award) (results.OperationResult[int, error], error) {
	keep := make([]string, 0, len(awards))
	for _, a := range awards {
		if err := s.repo.UpsertAward(ctx, db, awarddb.FromDomain(a)); err != nil {
			return results.OperationResult[int, error]{}, err
		}
		keep = append(keep, a.Key)
	}
	removed, err := s.repo.DeleteAwardsExcept(ctx, db, day, keep)
	if err != nil {
		return results.OperationResult[int, error]{}, err
	}
	return results.SuccessResult[int, error](removed), nil
}

// annotateAll marks awarded cells and clears the mark from every other
// report of the day. It returns the number of cells that failed.
func (s *AwardService) annotateAll(ctx context.Context, reports []reportdomain.Report, awards []awarddomain.Award) int {
	symbols := make(map[string]string, len(awards))
	for _, a := range awards {
		symbols[a.Key] = a.Symbol()
	}

	failures := 0
	for _, r := range reports {
		symbol := symbols[r.Key]
		if err := s.annotate(ctx, r, symbol); err != nil {
			failures++
			s.logger.WarnContext(ctx, "Failed to annotate grid cell",
				attr.Identity(r.Identity),
				attr.Date("date", r.Date),
				attr.String("symbol", symbol),
				attr.Error(err),
			)
		}
	}
	return failures
}

// annotate sets symbol on the report's cell, rewriting the steps first when
// the cell is missing from the grid.
func (s *AwardService) annotate(ctx context.Context, r reportdomain.Report, symbol string) error {
	err := s.grid.AnnotateCell(ctx, r.Identity, r.Date, symbol)
	if !errors.Is(err, gridservice.ErrCellNotFound) {
		return err
	}

	s.logger.InfoContext(ctx, "Repairing missing grid cell",
		attr.Identity(r.Identity),
		attr.Date("date", r.Date),
	)
	if err := s.grid.WriteCell(ctx, r.Identity, r.Date, r.Steps); err != nil {
		return err
	}
	if symbol == "" {
		return nil
	}
	return s.grid.AnnotateCell(ctx, r.Identity, r.Date, symbol)
}
