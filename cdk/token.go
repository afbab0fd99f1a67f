package cdk

import (
	"fmt"
	"regexp"
	"strings"
)

// Reference is a deferred value bound to a field of another resource's
// runtime data. It renders as a string token that travels through templates
// and parameters opaquely and is substituted by the deploy step once the
// referenced resource has produced data. The core never resolves it.
type Reference struct {
	LogicalID string
	Field     string
}

const (
	tokenPrefix = "${Token["
	tokenSuffix = "]}"
)

var tokenPattern = regexp.MustCompile(`\$\{Token\[([A-Za-z0-9_-]+)\.([^\]]+)\]\}`)

// String renders the reference as its wire token, e.g.
// "${Token[MyResource.Certificate.Arn]}".
func (r Reference) String() string {
	return tokenPrefix + r.LogicalID + "." + r.Field + tokenSuffix
}

// ParseToken parses s as a single reference token. It reports false when s
// is not exactly one token (embedded tokens are found with FindTokens).
func ParseToken(s string) (Reference, bool) {
	if !strings.HasPrefix(s, tokenPrefix) || !strings.HasSuffix(s, tokenSuffix) {
		return Reference{}, false
	}
	inner := s[len(tokenPrefix) : len(s)-len(tokenSuffix)]
	dot := strings.Index(inner, ".")
	if dot <= 0 || dot == len(inner)-1 {
		return Reference{}, false
	}
	if strings.ContainsAny(inner, "[]") || strings.Contains(inner, tokenPrefix) {
		return Reference{}, false
	}
	return Reference{LogicalID: inner[:dot], Field: inner[dot+1:]}, true
}

// FindTokens walks v and returns every reference token it contains, in
// encounter order, including tokens embedded inside larger strings. The
// result may contain duplicates.
func FindTokens(v any) []Reference {
	var refs []Reference
	walkTokens(v, func(r Reference) { refs = append(refs, r) })
	return refs
}

func walkTokens(v any, fn func(Reference)) {
	switch val := v.(type) {
	case string:
		for _, m := range tokenPattern.FindAllStringSubmatch(val, -1) {
			fn(Reference{LogicalID: m[1], Field: m[2]})
		}
	case Reference:
		fn(val)
	case map[string]any:
		for _, v := range val {
			walkTokens(v, fn)
		}
	case map[any]any:
		for _, v := range val {
			walkTokens(v, fn)
		}
	case []any:
		for _, v := range val {
			walkTokens(v, fn)
		}
	}
}

// ReplaceTokens returns a copy of v with every reference token substituted
// via resolve. A string that is exactly one token is replaced by the resolved
// value with its type intact; tokens embedded in larger strings are rendered
// with %v. Unresolvable tokens are reported as errors so a deploy never
// dispatches a call with a dangling reference.
func ReplaceTokens(v any, resolve func(Reference) (any, bool)) (any, error) {
	switch val := v.(type) {
	case string:
		if ref, ok := ParseToken(val); ok {
			resolved, ok := resolve(ref)
			if !ok {
				return nil, fmt.Errorf("unresolved reference %s", val)
			}
			return resolved, nil
		}
		var firstErr error
		out := tokenPattern.ReplaceAllStringFunc(val, func(m string) string {
			ref, _ := ParseToken(m)
			resolved, ok := resolve(ref)
			if !ok {
				if firstErr == nil {
					firstErr = fmt.Errorf("unresolved reference %s", m)
				}
				return m
			}
			return fmt.Sprintf("%v", resolved)
		})
		if firstErr != nil {
			return nil, firstErr
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			replaced, err := ReplaceTokens(v, resolve)
			if err != nil {
				return nil, err
			}
			out[k] = replaced
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, v := range val {
			replaced, err := ReplaceTokens(v, resolve)
			if err != nil {
				return nil, err
			}
			out[i] = replaced
		}
		return out, nil
	default:
		return v, nil
	}
}
