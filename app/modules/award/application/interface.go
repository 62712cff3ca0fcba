package awardservice

import (
	"context"
	"time"

	awarddomain "github.com/Black-And-White-Club/step-bot/app/modules/award/domain"
	reportdb "github.com/Black-And-White-Club/step-bot/app/modules/report/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// AwardRun is the outcome of ranking one day.
type AwardRun struct {
	Date   time.Time
	Awards []awarddomain.Award
	// Summary is empty when nobody reported that day.
	Summary string
	// Removed counts stored awards dropped because the ranking changed.
	Removed int
	// AnnotationFailures counts grid cells that could not be annotated.
	AnnotationFailures int
}

// Service defines the interface for the AwardService.
type Service interface {
	// AssignAwards ranks the reports of date, stores the medals and
	// annotates the grid.
	AssignAwards(ctx context.Context, date time.Time) (AwardRun, error)
}

// ReportReader reads stored reports.
type ReportReader interface {
	FindReports(ctx context.Context, db bun.IDB, from, to time.Time) ([]reportdb.StepReport, error)
}

// Annotator is the part of the grid the award run touches.
type Annotator interface {
	WriteCell(ctx context.Context, identity string, date time.Time, steps int) error
	AnnotateCell(ctx context.Context, identity string, date time.Time, symbol string) error
}
