package paths

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"strata.lol/arena"
	"strata.lol/context"
	"strata.lol/store"
	"strata.lol/strided"
)

func lines(input st) []st {
	if input = strings.TrimSpace(input); input == "" {
		return nil
	}
	return strings.Split(input, "\n")
}

// parseWrites reads path=value lines, a line of -path deletes the path.
func parseWrites(input st) (paths, values strided.Tape, presences strided.Octets) {
	var ps, vs []st
	ls := lines(input)
	presences = strided.NewOctets(len(ls))
	for i, l := range ls {
		if strings.HasPrefix(l, "-") {
			ps, vs = append(ps, l[1:]), append(vs, "")
			continue
		}
		kv := strings.SplitN(l, "=", 2)
		ps, vs = append(ps, kv[0]), append(vs, kv[1])
		presences.Set(i, true)
	}
	return strided.TapeOf(ps...), strided.TapeOf(vs...), presences
}

func fmtPaths(t strided.Tape) st {
	parts := make([]st, t.Len())
	for i := range parts {
		parts[i] = st(t.At(i))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func TestDataDriven(t *testing.T) {
	for _, e := range engines {
		t.Run(e.name, func(t *testing.T) {
			var db store.I
			var col store.Collection
			datadriven.RunTest(t, "testdata/paths", func(t *testing.T, d *datadriven.TestData) st {
				c := context.Bg()
				if d.Cmd == "reset" {
					db = e.open(t)
					var err er
					col, err = db.Collection(c, "paths")
					require.NoError(t, err)
					return ""
				}
				var out strings.Builder
				p := New(db, col, nil, arena.New(0))
				var err er
				switch d.Cmd {
				case "write":
					paths, values, presences := parseWrites(d.Input)
					if !d.HasArg("txn") {
						err = p.Write(c, paths, values, presences, '/', store.Default)
						break
					}
					err = db.Update(c, func(txn store.Txn) er {
						return New(db, col, txn, nil).Write(c, paths, values, presences, '/',
							store.Default)
					})
				case "read":
					ls := lines(d.Input)
					var vals store.Values
					if vals, err = p.Read(c, strided.TapeOf(ls...), '/', store.Default); err != nil {
						break
					}
					for i, l := range ls {
						v, ok := vals.At(i)
						if !ok {
							fmt.Fprintf(&out, "%s: missing\n", l)
							continue
						}
						fmt.Fprintf(&out, "%s: %q\n", l, v)
					}
					return out.String()
				case "match":
					ls := lines(d.Input)
					patterns := make([]st, len(ls))
					for i, l := range ls {
						patterns[i] = l
						if d.HasArg("glob") {
							patterns[i] = Glob(l, '/')
						}
					}
					var previous strided.Tape
					if d.HasArg("after") {
						var after st
						d.ScanArgs(t, "after", &after)
						previous = strided.BroadcastTape(after, len(ls))
					}
					var limits strided.T[uint32]
					if d.HasArg("limit") {
						var limit int
						d.ScanArgs(t, "limit", &limit)
						limits = strided.Broadcast(uint32(limit), len(ls))
					}
					var m Matches
					if m, err = p.Match(c, strided.TapeOf(patterns...), previous, limits, '/',
						store.Default); err != nil {
						break
					}
					for i, l := range ls {
						if m.Errors[i] != nil {
							require.True(t, errors.Is(m.Errors[i], ErrPattern))
							fmt.Fprintf(&out, "%s: invalid pattern\n", l)
							continue
						}
						fmt.Fprintf(&out, "%s: %s\n", l, fmtPaths(m.Of(i)))
					}
					return out.String()
				default:
					return fmt.Sprintf("unknown command %q\n", d.Cmd)
				}
				if err != nil {
					return fmt.Sprintf("error: %v\n", err)
				}
				return "ok\n"
			})
		})
	}
}
