// Command stratactl reads and edits a strata database directly, without a
// server. The server must not have the database open at the same time.
package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"

	"strata.lol/context"
	"strata.lol/interrupt"
)

type EdgesArgs struct {
	Edges []string `arg:"positional,required" help:"edges as source:target or source:target:id"`
	Txn   bool     `arg:"-t,--txn" help:"apply all the edges in one transaction"`
}

type EdgeCmd struct {
	Add *EdgesArgs `arg:"subcommand:add" help:"insert edges"`
	Rm  *EdgesArgs `arg:"subcommand:rm" help:"remove edges"`
}

type VerticesCmd struct {
	Role     string  `arg:"-r,--role" default:"any" help:"role of the vertices: source, target or any"`
	Vertices []int64 `arg:"positional,required"`
}

type BetweenCmd struct {
	Source int64 `arg:"positional,required"`
	Target int64 `arg:"positional,required"`
}

type PutCmd struct {
	Path  string `arg:"positional,required"`
	Value string `arg:"positional" help:"value, empty if not given"`
}

type PathsCmd struct {
	Paths []string `arg:"positional,required"`
}

type MatchCmd struct {
	Patterns []string `arg:"positional,required" help:"regular expressions matched against whole paths"`
	Glob     bool     `arg:"-g,--glob" help:"the patterns are globs: + one component, # the rest, * any run in a component"`
	Sep      string   `arg:"-s,--sep" default:"/" help:"path component separator for globs"`
	Limit    uint32   `arg:"-l,--limit" help:"maximum paths per pattern, 0 is no limit"`
	After    string   `arg:"-a,--after" help:"start after this path"`
}

type DumpCmd struct{}

type LoadCmd struct {
	File string `arg:"positional" help:"file written by dump, standard input if not given"`
}

type DropCmd struct {
	Mode string `arg:"-m,--mode" default:"keys-vals-handle" help:"keys-vals-handle, keys-vals or vals"`
}

type NukeCmd struct {
	Yes bool `arg:"--yes-i-am-sure,required" help:"confirm deleting everything"`
}

type KeygenCmd struct{}

type TokenCmd struct {
	Secret string `arg:"--secret,env:ADMIN_SECRET,required" help:"base64 x509 secret key from keygen"`
	Expiry string `arg:"-x,--expiry" default:"1h" help:"token lifetime"`
}

type Args struct {
	DataDir     string       `arg:"-d,--datadir,env:DATA_DIR" help:"database directory (default the server's)"`
	Engine      string       `arg:"-e,--engine,env:ENGINE" default:"ratel" help:"ratel or gravel"`
	Collection  string       `arg:"-c,--collection" default:"main" help:"collection to work on"`
	LogLevel    string       `arg:"--loglevel,env:LOG_LEVEL" default:"warn"`
	Retries     int          `arg:"--retries,env:RETRIES" default:"8" help:"attempts of a transaction that keeps conflicting"`
	YAML        bool         `arg:"-y,--yaml" help:"print results as YAML"`
	Edge        *EdgeCmd     `arg:"subcommand:edge" help:"add or remove edges"`
	Degree      *VerticesCmd `arg:"subcommand:degree" help:"print the degree of vertices"`
	Edges       *VerticesCmd `arg:"subcommand:edges" help:"print the edges of vertices"`
	Between     *BetweenCmd  `arg:"subcommand:between" help:"print the ids of the edges from source to target"`
	Put         *PutCmd      `arg:"subcommand:put" help:"store a value under a path"`
	Get         *PathsCmd    `arg:"subcommand:get" help:"print the values of paths"`
	Del         *PathsCmd    `arg:"subcommand:del" help:"delete paths"`
	Match       *MatchCmd    `arg:"subcommand:match" help:"print the paths matching patterns"`
	Dump        *DumpCmd     `arg:"subcommand:dump" help:"print the collection as hex key and value lines"`
	Load        *LoadCmd     `arg:"subcommand:load" help:"load the output of dump into the collection"`
	Collections *DumpCmd     `arg:"subcommand:collections" help:"list the named collections"`
	Drop        *DropCmd     `arg:"subcommand:drop" help:"drop the collection"`
	Nuke        *NukeCmd     `arg:"subcommand:nuke" help:"delete everything"`
	Keygen      *KeygenCmd   `arg:"subcommand:keygen" help:"make an admin key pair for the server"`
	Token       *TokenCmd    `arg:"subcommand:token" help:"make an admin token"`
}

func (Args) Description() string {
	return "stratactl reads and edits a strata database in place\n"
}

func main() {
	var args Args
	p := arg.MustParse(&args)
	if p.Subcommand() == nil {
		p.Fail("missing subcommand")
	}
	c, cancel := context.Cancel(context.Bg())
	interrupt.AddHandler(cancel)
	if err := Run(c, &args, os.Stdout, os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
