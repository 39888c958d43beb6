// Package loader imports tag and ingredient fixtures from CSV files.
package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// Catalog stores rows that do not exist yet.
type Catalog interface {
	GetOrCreateTag(ctx context.Context, tag *models.Tag) (bool, error)
	GetOrCreateIngredient(ctx context.Context, ing *models.Ingredient) (bool, error)
}

// RowError describes a row that could not be stored. Line is 1-based.
type RowError struct {
	Line int
	Row  []string
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Row, e.Err)
}

// Result summarizes one import.
type Result struct {
	Created  int
	Existing int
	Errors   []RowError
}

// column names a CSV field and the validator rules it must pass.
type column struct {
	name  string
	rules string
}

var (
	tagColumns = []column{
		{"name", "required,max=200"},
		{"color", "required,hexcolor6"},
		{"slug", "required,max=200,slug"},
	}
	ingredientColumns = []column{
		{"name", "required,max=200"},
		{"measurement_unit", "required,max=200"},
	}
)

// LoadTags reads name,color,slug rows. Bad rows are reported in the result
// and do not stop the import.
func LoadTags(ctx context.Context, r io.Reader, catalog Catalog) (*Result, error) {
	return load(ctx, r, tagColumns, func(rec []string) (bool, error) {
		tag := &models.Tag{Name: rec[0], Color: strings.ToUpper(rec[1]), Slug: rec[2]}
		created, err := catalog.GetOrCreateTag(ctx, tag)
		if err == nil && !created {
			logging.Ctx(ctx).Info().Str("slug", tag.Slug).Msg("tag already exists")
		}
		return created, err
	})
}

// LoadIngredients reads name,measurement_unit rows.
func LoadIngredients(ctx context.Context, r io.Reader, catalog Catalog) (*Result, error) {
	return load(ctx, r, ingredientColumns, func(rec []string) (bool, error) {
		ing := &models.Ingredient{Name: rec[0], MeasurementUnit: rec[1]}
		created, err := catalog.GetOrCreateIngredient(ctx, ing)
		if err == nil && !created {
			logging.Ctx(ctx).Debug().Str("name", ing.Name).Msg("ingredient already exists")
		}
		return created, err
	})
}

// load validates every row against columns before handing it to store.
func load(ctx context.Context, r io.Reader, columns []column, store func([]string) (bool, error)) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	res := &Result{}
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.Errors = append(res.Errors, RowError{Line: line, Err: err})
				continue
			}
			return res, fmt.Errorf("read csv: %w", err)
		}
		if len(rec) < len(columns) {
			res.Errors = append(res.Errors, RowError{
				Line: line, Row: rec,
				Err: fmt.Errorf("expected %d columns, got %d", len(columns), len(rec)),
			})
			continue
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		if err := validateRow(columns, rec); err != nil {
			res.Errors = append(res.Errors, RowError{Line: line, Row: rec, Err: err})
			continue
		}

		created, err := store(rec)
		switch {
		case err != nil:
			res.Errors = append(res.Errors, RowError{Line: line, Row: rec, Err: err})
		case created:
			res.Created++
		default:
			res.Existing++
		}
	}
	return res, nil
}

func validateRow(columns []column, rec []string) error {
	var parts []string
	for i, col := range columns {
		if err := validation.Get().Var(rec[i], col.rules); err != nil {
			parts = append(parts, col.name+": "+validation.Message(err))
		}
	}
	if len(parts) > 0 {
		return errors.New(strings.Join(parts, "; "))
	}
	return nil
}
