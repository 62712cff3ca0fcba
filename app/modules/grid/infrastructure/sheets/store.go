// Package gridsheets keeps the grid in a Google Sheets spreadsheet through
// the Sheets v4 API with a service account.
package gridsheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	griddomain "github.com/Black-And-White-Club/step-bot/app/modules/grid/domain"
	"github.com/xuri/excelize/v2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Config identifies the spreadsheet and tab.
type Config struct {
	SpreadsheetID     string
	Sheet             string
	RequestsPerMinute int
}

// Store implements the grid store on one spreadsheet tab.
type Store struct {
	svc     *sheets.Service
	cfg     Config
	limiter *rate.Limiter
}

// NewStore authenticates with the service account key at credentialsPath.
func NewStore(ctx context.Context, credentialsPath string, cfg Config) (*Store, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("gridsheets: read credentials: %w", err)
	}
	jwtCfg, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("gridsheets: parse credentials: %w", err)
	}
	return NewStoreWithOptions(ctx, cfg, option.WithHTTPClient(jwtCfg.Client(ctx)))
}

// NewStoreWithOptions builds the Sheets client from opts.
func NewStoreWithOptions(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Store, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("gridsheets: spreadsheet id is required")
	}
	if cfg.Sheet == "" {
		return nil, errors.New("gridsheets: sheet name is required")
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gridsheets: create service: %w", err)
	}

	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
		burst = max(1, cfg.RequestsPerMinute/10)
	}

	return &Store{
		svc:     svc,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, burst),
	}, nil
}

// Values reads the whole tab as displayed.
func (s *Store) Values(ctx context.Context) ([][]string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("gridsheets.Values: %w", err)
	}

	resp, err := s.svc.Spreadsheets.Values.Get(s.cfg.SpreadsheetID, quoteSheet(s.cfg.Sheet)).
		MajorDimension("ROWS").
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("gridsheets.Values: %w", err)
	}

	out := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		out[i] = make([]string, len(row))
		for j, v := range row {
			if str, ok := v.(string); ok {
				out[i][j] = str
			} else if v != nil {
				out[i][j] = fmt.Sprint(v)
			}
		}
	}
	return out, nil
}

// WriteCells sends the batch as one values:batchUpdate request. Values are
// written RAW so date headers stay text.
func (s *Store) WriteCells(ctx context.Context, cells []griddomain.CellWrite) error {
	if len(cells) == 0 {
		return nil
	}

	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             make([]*sheets.ValueRange, 0, len(cells)),
	}
	for _, c := range cells {
		a1, err := excelize.CoordinatesToCellName(c.Col+1, c.Row+1)
		if err != nil {
			return fmt.Errorf("gridsheets.WriteCells: %w", err)
		}
		req.Data = append(req.Data, &sheets.ValueRange{
			Range:  quoteSheet(s.cfg.Sheet) + "!" + a1,
			Values: [][]interface{}{{c.Value}},
		})
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("gridsheets.WriteCells: %w", err)
	}
	if _, err := s.svc.Spreadsheets.Values.BatchUpdate(s.cfg.SpreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gridsheets.WriteCells: %w", err)
	}
	return nil
}

// quoteSheet renders a sheet name for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
