package arb

import (
	"strata.lol/lol"
)

type (
	bo = bool
	by = []byte
	st = string
	no = int
)

var (
	log, chk, errorf = lol.Main.Log, lol.Main.Check, lol.Main.Errorf
)
