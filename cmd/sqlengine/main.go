package main

import (
	"fmt"
	"log"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/mizukoshi/sqlengine/internal/config"
	"github.com/mizukoshi/sqlengine/internal/engine"
	"github.com/mizukoshi/sqlengine/internal/repl"
	"github.com/mizukoshi/sqlengine/internal/store"
)

var version string

// parseOptions parses the CLI options and positional database file
// argument, in the same go-flags shape the teacher's per-database command
// entrypoints use.
func parseOptions(args []string) (string, config.Config) {
	var opts struct {
		Config  string `long:"config" description:"YAML file to specify: store_file, echo, prompt"`
		Echo    bool   `long:"echo" description:"Echo each statement before executing it"`
		Help    bool   `long:"help" description:"Show this help"`
		Version bool   `long:"version" description:"Show this version"`
	}

	p := flags.NewParser(&opts, flags.None)
	p.Usage = "[option...] db_file"
	args, err := p.ParseArgs(args)
	if err != nil {
		log.Fatal(err)
	}

	if opts.Help {
		p.WriteHelp(os.Stdout)
		os.Exit(0)
	}
	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	if len(args) == 0 {
		fmt.Print("No database file is specified!\n\n")
		p.WriteHelp(os.Stdout)
		os.Exit(1)
	}
	dbFile := args[0]

	var cfg config.Config
	if opts.Config != "" {
		cfg, err = config.Load(opts.Config)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		cfg = config.Default(dbFile)
	}
	cfg.StoreFile = dbFile
	if opts.Echo {
		cfg.Echo = true
	}
	return dbFile, cfg
}

func main() {
	dbFile, cfg := parseOptions(os.Args[1:])

	s, err := store.Open(dbFile)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	eng := engine.New(s)
	session := repl.New(os.Stdin, os.Stdout, eng, cfg)
	code := session.Run()
	s.Close()
	os.Exit(code)
}
