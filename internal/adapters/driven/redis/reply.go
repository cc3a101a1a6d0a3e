package redis

import (
	"fmt"
	"strconv"

	"github.com/creativedestruction/searchdash/internal/core/domain"
	"github.com/creativedestruction/searchdash/internal/core/ports/driven"
)

// searchArgs builds FT.SEARCH <index> <expr> [NOCONTENT] [WITHSCORES]
// [SUMMARIZE] [HIGHLIGHT] LIMIT <offset> <num>.
func searchArgs(index string, q domain.CompiledQuery) []any {
	args := []any{"FT.SEARCH", index, q.Expression}
	if q.NoContent {
		args = append(args, "NOCONTENT")
	}
	if q.WithScores {
		args = append(args, "WITHSCORES")
	}
	if !q.NoContent {
		if q.Summarize {
			args = append(args, "SUMMARIZE")
		}
		if q.Highlight {
			args = append(args, "HIGHLIGHT")
		}
	}
	return append(args, "LIMIT", q.Offset, q.Limit)
}

// parseSearchReply decodes [total, key, (score), ([field, value, ...]), ...].
func parseSearchReply(reply any, withScores, noContent bool) (*driven.SearchReply, error) {
	items, ok := reply.([]any)
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("%w: unexpected FT.SEARCH reply %T", domain.ErrConnectionLost, reply)
	}
	total, err := toInt(items[0])
	if err != nil {
		return nil, fmt.Errorf("%w: FT.SEARCH total: %v", domain.ErrConnectionLost, err)
	}

	stride := 1
	if withScores {
		stride++
	}
	if !noContent {
		stride++
	}

	out := &driven.SearchReply{Total: total}
	rest := items[1:]
	if len(rest)%stride != 0 {
		return nil, fmt.Errorf("%w: FT.SEARCH reply has %d entries, want multiple of %d",
			domain.ErrConnectionLost, len(rest), stride)
	}
	for i := 0; i < len(rest); i += stride {
		hit := driven.SearchHit{Key: toString(rest[i])}
		next := i + 1
		if withScores {
			score, err := toFloat(rest[next])
			if err != nil {
				return nil, fmt.Errorf("%w: score of %s: %v", domain.ErrConnectionLost, hit.Key, err)
			}
			hit.Score = score
			next++
		}
		if !noContent {
			hit.Fields = pairsToMap(rest[next])
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

func pairsToMap(v any) map[string]string {
	out := map[string]string{}
	switch pairs := v.(type) {
	case []any:
		for i := 0; i+1 < len(pairs); i += 2 {
			out[toString(pairs[i])] = toString(pairs[i+1])
		}
	case map[any]any:
		for k, val := range pairs {
			out[toString(k)] = toString(val)
		}
	}
	return out
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(s)
	}
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		f, err := strconv.ParseFloat(toString(v), 64)
		if err != nil {
			return 0, err
		}
		return int(f), nil
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	default:
		return strconv.ParseFloat(toString(v), 64)
	}
}
