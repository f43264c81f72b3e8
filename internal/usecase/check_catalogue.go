package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/autocrew/internal/domain"
)

// CheckCatalogueInput contains the parameters for checking the catalogue.
type CheckCatalogueInput struct{}

// CheckCatalogueOutput contains the result of checking the catalogue.
type CheckCatalogueOutput struct {
	Report     domain.DependencyReport
	TaskCount  int
	FileSpread map[string]int // tasks per definition file
}

// CheckCatalogue validates every task definition and reports dependency problems.
type CheckCatalogue struct {
	loader domain.TaskSpecLoader
}

// NewCheckCatalogue creates a new CheckCatalogue use case.
func NewCheckCatalogue(loader domain.TaskSpecLoader) *CheckCatalogue {
	return &CheckCatalogue{loader: loader}
}

// Execute loads the catalogue. Load errors are returned as is; dependency
// problems are reported without failing.
func (uc *CheckCatalogue) Execute(_ context.Context, _ CheckCatalogueInput) (*CheckCatalogueOutput, error) {
	cat, err := uc.loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalogue: %w", err)
	}

	spread := make(map[string]int)
	for _, entry := range cat.Entries() {
		spread[sourceFile(entry.Source)]++
	}

	return &CheckCatalogueOutput{
		Report:     domain.AnalyzeDependencies(cat),
		TaskCount:  cat.Len(),
		FileSpread: spread,
	}, nil
}

// sourceFile strips the entry index from a catalogue source reference.
func sourceFile(source string) string {
	if i := strings.LastIndexByte(source, '#'); i >= 0 {
		return source[:i]
	}
	return source
}
