package highlighter

import chroma "github.com/alecthomas/chroma/v2"

type TokenCategory int

const (
	TokenPlain TokenCategory = iota
	TokenKeyword
	TokenType
	TokenFunction
	TokenString
	TokenNumber
	TokenComment
	TokenOperator
	TokenError
)

func classify(t chroma.TokenType) TokenCategory {
	switch {
	case t == chroma.Error:
		return TokenError
	case t == chroma.KeywordType || t == chroma.NameClass || t == chroma.NameBuiltin:
		return TokenType
	case t == chroma.NameFunction || t == chroma.NameFunctionMagic:
		return TokenFunction
	case t.InCategory(chroma.Keyword):
		return TokenKeyword
	case t.InCategory(chroma.Comment):
		return TokenComment
	case t.InSubCategory(chroma.LiteralString):
		return TokenString
	case t.InSubCategory(chroma.LiteralNumber):
		return TokenNumber
	case t.InCategory(chroma.Operator) || t == chroma.Punctuation:
		return TokenOperator
	default:
		return TokenPlain
	}
}
