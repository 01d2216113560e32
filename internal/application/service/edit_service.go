package service

import (
	"context"
	"fmt"

	"swiftscope/internal/application/common/slogger"
	"swiftscope/internal/domain/errors/domain"
	"swiftscope/internal/domain/valueobject"
	"swiftscope/internal/port/inbound"
	"swiftscope/internal/port/outbound"

	"github.com/google/uuid"
)

// TreeEditService applies token-addressed mutations to open trees. Every
// mutation is pure: it renders the edited token stream, re-parses the
// result and stores the new tree under a fresh handle. The handle the
// edit was addressed through keeps serving the unedited tree.
type TreeEditService struct {
	parser      outbound.SyntaxParser
	indentation outbound.IndentationAnalyzer
	arena       *TreeArena
}

// NewTreeEditService creates the edit service. All dependencies are
// required.
func NewTreeEditService(
	parser outbound.SyntaxParser,
	indentation outbound.IndentationAnalyzer,
	arena *TreeArena,
) *TreeEditService {
	if parser == nil {
		panic("parser cannot be nil")
	}
	if indentation == nil {
		panic("indentation cannot be nil")
	}
	if arena == nil {
		panic("arena cannot be nil")
	}
	return &TreeEditService{
		parser:      parser,
		indentation: indentation,
		arena:       arena,
	}
}

// LocateTokens finds the tokens on one line of an open tree. Lines with
// no tokens, including lines past the end of the file, yield an empty
// result rather than an error.
func (s *TreeEditService) LocateTokens(
	ctx context.Context,
	handle uuid.UUID,
	query inbound.TokenQuery,
) (inbound.TokenQueryResult, error) {
	tree, err := s.arena.Get(handle)
	if err != nil {
		return inbound.TokenQueryResult{}, err
	}
	if query.Line < 1 {
		return inbound.TokenQueryResult{}, nil
	}

	row := valueobject.ClampToUint32(query.Line - 1)
	tokens := valueobject.TokensOnLine(tree.Tokens().Tokens(), row)

	column := uint32(0)
	if query.Column > 1 {
		column = valueobject.ClampToUint32(query.Column - 1)
	}

	result := inbound.TokenQueryResult{Tokens: tokens}
	if selected, ok := valueobject.SelectToken(tokens, query.Strategy, column); ok {
		result.Selected = &selected
	}
	return result, nil
}

// ReplaceToken swaps the text of the addressed token for newText, keeping
// the token's leading and trailing trivia in place. The replacement must
// lex to exactly one token; multi-token or trivia-only content is
// rejected before anything is modified.
func (s *TreeEditService) ReplaceToken(
	ctx context.Context,
	handle uuid.UUID,
	address string,
	newText string,
) (inbound.EditResult, error) {
	tree, token, err := s.resolveToken(handle, address)
	if err != nil {
		return inbound.EditResult{}, err
	}

	replacement, err := s.singleTokenText(ctx, newText)
	if err != nil {
		return inbound.EditResult{}, err
	}

	stream, err := tree.Tokens().WithTokenText(token.Index, replacement)
	if err != nil {
		return inbound.EditResult{}, domain.NodeNotFoundError(address)
	}

	result, err := s.commit(ctx, stream)
	if err != nil {
		return inbound.EditResult{}, err
	}
	slogger.Debug(ctx, "Token replaced", slogger.Fields{
		"address":    address,
		"old_text":   token.Text,
		"new_text":   replacement,
		"new_handle": result.Handle.String(),
	})
	return result, nil
}

// DeleteToken removes the addressed token's text, keeping its trivia in
// place, and returns the removed text.
func (s *TreeEditService) DeleteToken(
	ctx context.Context,
	handle uuid.UUID,
	address string,
) (string, inbound.EditResult, error) {
	tree, token, err := s.resolveToken(handle, address)
	if err != nil {
		return "", inbound.EditResult{}, err
	}

	deleted, stream, err := tree.Tokens().WithoutTokenText(token.Index)
	if err != nil {
		return "", inbound.EditResult{}, domain.NodeNotFoundError(address)
	}

	result, err := s.commit(ctx, stream)
	if err != nil {
		return "", inbound.EditResult{}, err
	}
	slogger.Debug(ctx, "Token deleted", slogger.Fields{
		"address":      address,
		"deleted_text": deleted,
		"new_handle":   result.Handle.String(),
	})
	return deleted, result, nil
}

// SetDocComment replaces the doc-comment block attached to the addressed
// token. Indentation and unrelated leading trivia are preserved. A nil
// text still resolves the address but changes nothing; the original
// handle and source come back unchanged.
func (s *TreeEditService) SetDocComment(
	ctx context.Context,
	handle uuid.UUID,
	address string,
	text *string,
) (inbound.EditResult, error) {
	tree, token, err := s.resolveToken(handle, address)
	if err != nil {
		return inbound.EditResult{}, err
	}

	if text == nil {
		return inbound.EditResult{Handle: handle, Source: tree.Tokens().Render()}, nil
	}

	leading := valueobject.ReplaceDocComment(token.Leading, *text)
	stream, err := tree.Tokens().WithLeadingTrivia(token.Index, leading)
	if err != nil {
		return inbound.EditResult{}, domain.NodeNotFoundError(address)
	}

	result, err := s.commit(ctx, stream)
	if err != nil {
		return inbound.EditResult{}, err
	}
	slogger.Debug(ctx, "Doc comment set", slogger.Fields{
		"address":    address,
		"new_handle": result.Handle.String(),
	})
	return result, nil
}

// InsertDeclaration is a permanent stub. It validates the handle, then
// fails with an invalid insertion point so callers get a clear signal
// instead of a silent no-op.
func (s *TreeEditService) InsertDeclaration(
	ctx context.Context,
	handle uuid.UUID,
	address string,
	content string,
) (inbound.EditResult, error) {
	if _, err := s.arena.Get(handle); err != nil {
		return inbound.EditResult{}, err
	}
	return inbound.EditResult{}, domain.InvalidInsertionPointError(
		fmt.Sprintf("declaration insertion is not supported (anchor %q)", address),
	)
}

// Reindent normalizes leading whitespace across the whole tree to the
// nesting depth times width spaces.
func (s *TreeEditService) Reindent(
	ctx context.Context,
	handle uuid.UUID,
	width int,
) (inbound.EditResult, error) {
	tree, err := s.arena.Get(handle)
	if err != nil {
		return inbound.EditResult{}, err
	}
	if width < 1 {
		return inbound.EditResult{}, fmt.Errorf("%w: %d", domain.ErrInvalidIndentWidth, width)
	}

	stream, err := valueobject.ReindentStream(tree.Tokens(), s.indentation.ExtraIndentRanges(tree), width)
	if err != nil {
		return inbound.EditResult{}, domain.ModificationFailedError(err.Error())
	}

	result, err := s.commit(ctx, stream)
	if err != nil {
		return inbound.EditResult{}, err
	}
	slogger.Debug(ctx, "Tree reindented", slogger.Fields{
		"width":      width,
		"new_handle": result.Handle.String(),
	})
	return result, nil
}

// resolveToken turns a handle and a token address into the tree and the
// addressed token. Malformed addresses and addresses matching no token
// fail with distinct errors.
func (s *TreeEditService) resolveToken(
	handle uuid.UUID,
	address string,
) (*valueobject.SyntaxTree, valueobject.Token, error) {
	tree, err := s.arena.Get(handle)
	if err != nil {
		return nil, valueobject.Token{}, err
	}

	parsed, err := valueobject.ParseTokenAddress(address)
	if err != nil {
		return nil, valueobject.Token{}, fmt.Errorf("%w: %w", domain.ErrMalformedAddress, err)
	}

	index, ok := parsed.TokenIndex()
	if !ok {
		// Dotted token addresses are parseable but address nothing.
		return nil, valueobject.Token{}, domain.NodeNotFoundError(address)
	}

	token, ok := tree.Tokens().At(index)
	if !ok {
		return nil, valueobject.Token{}, domain.NodeNotFoundError(address)
	}
	return tree, token, nil
}

// singleTokenText lexes a replacement and returns its sole token's text.
// Anything that does not lex to exactly one token is rejected.
func (s *TreeEditService) singleTokenText(ctx context.Context, text string) (string, error) {
	tree, err := s.parser.Parse(ctx, []byte(text))
	if err != nil {
		return "", domain.InvalidReplacementContextError(err.Error())
	}

	var tokens []valueobject.Token
	for _, tok := range tree.Tokens().Tokens() {
		if tok.Text == "" {
			continue
		}
		tokens = append(tokens, tok)
	}

	switch len(tokens) {
	case 0:
		return "", domain.InvalidReplacementContextError("replacement contains no token")
	case 1:
		return tokens[0].Text, nil
	default:
		return "", domain.InvalidReplacementContextError(
			fmt.Sprintf("replacement lexes to %d tokens, expected exactly one", len(tokens)),
		)
	}
}

// commit renders an edited stream, re-parses it and stores the new tree.
func (s *TreeEditService) commit(ctx context.Context, stream *valueobject.TokenStream) (inbound.EditResult, error) {
	source := stream.Render()
	tree, err := s.parser.Parse(ctx, []byte(source))
	if err != nil {
		return inbound.EditResult{}, domain.ModificationFailedError(err.Error())
	}
	return inbound.EditResult{
		Handle: s.arena.Put(tree),
		Source: source,
	}, nil
}
