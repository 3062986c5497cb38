// This program audits the chain served by a node.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/powledger/app/tooling/admin/commands"
	"github.com/ardanlabs/powledger/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := struct {
		conf.Version
		Args       conf.Args
		URL        string        `conf:"default:http://localhost:8080"`
		Difficulty uint          `conf:"help:leading zeros to verify with or 0 to ask the node"`
		Timeout    time.Duration `conf:"default:30s"`
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "chain audit tool: validate | bals [id] | trans <id>",
		},
	}

	const prefix = "ADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	return processCommands(ctx, log, cfg.Args, cfg.URL, cfg.Difficulty)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(ctx context.Context, log *zap.SugaredLogger, args conf.Args, url string, difficulty uint) error {
	node, err := commands.Fetch(ctx, url)
	if err != nil {
		return fmt.Errorf("fetching chain: %w", err)
	}
	log.Infow("fetched", "url", url, "length", len(node.Chain), "difficulty", node.Difficulty)

	if difficulty == 0 {
		difficulty = node.Difficulty
	}

	switch args.Num(0) {
	case "validate":
		if err := commands.Validate(os.Stdout, node.Chain, difficulty); err != nil {
			return fmt.Errorf("validating chain: %w", err)
		}

	case "bals":
		commands.Balances(os.Stdout, node.Chain, args.Num(1))

	case "trans":
		if args.Num(1) == "" {
			return errors.New("trans requires a participant id")
		}
		commands.Transactions(os.Stdout, node.Chain, args.Num(1))

	default:
		return fmt.Errorf("unknown command %q", args.Num(0))
	}

	return nil
}
