package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"swiftscope/internal/adapter/outbound/repository"
	"swiftscope/internal/adapter/outbound/treesitter"
	swiftparser "swiftscope/internal/adapter/outbound/treesitter/parsers/swift"
	"swiftscope/internal/application/service"
	"swiftscope/internal/config"
	"swiftscope/internal/domain/valueobject"
	"swiftscope/internal/port/inbound"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// analysisServices bundles the in-process facade the CLI commands and
// the MCP server share.
type analysisServices struct {
	analysis inbound.TreeAnalysisService
	edits    inbound.TreeEditService
}

// newAnalysisServices builds the parser, extractors and tree arena and
// wires them into the analysis and edit facades.
func newAnalysisServices() (*analysisServices, error) {
	parser, err := treesitter.NewSwiftParser()
	if err != nil {
		return nil, fmt.Errorf("create parser: %w", err)
	}

	arena := service.NewTreeArena()
	analysis := service.NewTreeAnalysisService(
		parser,
		swiftparser.NewSwiftOutlineExtractor(),
		treesitter.NewDiagnosticsExtractor(),
		arena,
	)
	edits := service.NewTreeEditService(parser, treesitter.NewIndentationAnalyzer(), arena)

	return &analysisServices{analysis: analysis, edits: edits}, nil
}

// analysisOptionsFromConfig resolves outline options, preferring the
// flag value over the configured default.
func analysisOptionsFromConfig(cfg *config.Config, minVisibility string, includeDocs bool) (inbound.AnalysisOptions, error) {
	if minVisibility == "" {
		minVisibility = cfg.Analysis.MinVisibility
	}

	options := inbound.AnalysisOptions{
		MinVisibility:        valueobject.VisibilityPrivate,
		IncludeDocumentation: includeDocs,
	}
	if minVisibility != "" {
		parsed, err := valueobject.ParseVisibility(minVisibility)
		if err != nil {
			return inbound.AnalysisOptions{}, err
		}
		options.MinVisibility = parsed
	}
	return options, nil
}

// resolveTokenAddress turns a --line/--strategy/--column selection into
// a token address. An explicit --address wins.
func resolveTokenAddress(
	ctx context.Context,
	edits inbound.TreeEditService,
	handle uuid.UUID,
	address string,
	line int,
	strategy string,
	column int,
) (string, error) {
	if address != "" {
		return address, nil
	}
	if line < 1 {
		return "", errors.New("either --address or --line is required")
	}

	parsed, err := valueobject.ParseSelectionStrategy(strategy)
	if err != nil {
		return "", err
	}

	result, err := edits.LocateTokens(ctx, handle, inbound.TokenQuery{
		Line:     line,
		Strategy: parsed,
		Column:   column,
	})
	if err != nil {
		return "", err
	}
	if result.Selected == nil {
		return "", fmt.Errorf("no token on line %d", line)
	}
	return strconv.Itoa(result.Selected.Index), nil
}

// setupDatabaseConnection initializes the database connection with defaults.
func setupDatabaseConnection(cfg *config.Config) (*pgxpool.Pool, error) {
	dbConfig := repository.DatabaseConfig{
		Host:           cfg.Database.Host,
		Port:           cfg.Database.Port,
		Database:       cfg.Database.Name,
		Username:       cfg.Database.User,
		Password:       cfg.Database.Password,
		Schema:         "swiftscope",
		MaxConnections: cfg.Database.MaxConnections,
		SSLMode:        cfg.Database.SSLMode,
	}

	// Set defaults if not configured
	if dbConfig.Host == "" {
		dbConfig.Host = "localhost"
	}
	if dbConfig.Port == 0 {
		dbConfig.Port = 5432
	}
	if dbConfig.MaxConnections == 0 {
		dbConfig.MaxConnections = 10
	}
	if dbConfig.SSLMode == "" {
		dbConfig.SSLMode = "disable"
	}

	return repository.NewDatabaseConnection(dbConfig)
}
