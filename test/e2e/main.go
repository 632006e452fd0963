package main

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/kubev2v/executor-agent/test/e2e/infra"
)

type configuration struct {
	InfraMode   string // "process" or "external"
	AgentBinary string
	AgentAPIUrl string
	HTTPPort    int
}

var (
	cfg          configuration
	infraManager infra.InfraManager
)

func (c configuration) Validate() error {
	switch c.InfraMode {
	case "process":
		if c.AgentBinary == "" {
			return fmt.Errorf("agent binary is required in process mode")
		}
	case "external":
		if _, err := url.Parse(c.AgentAPIUrl); err != nil {
			return fmt.Errorf("failed to parse agent api url: %v", err)
		}
	default:
		return fmt.Errorf("invalid infra-mode %q: must be 'process' or 'external'", c.InfraMode)
	}
	return nil
}

func main() {
	flag := pflagSet()
	if err := flag.Parse(os.Args[1:]); err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("failed to validate configuration: %v", err)
	}

	switch cfg.InfraMode {
	case "process":
		im, err := infra.NewProcessInfraManager(cfg.AgentBinary, os.Stderr)
		if err != nil {
			log.Fatalf("failed to create process infra manager: %v", err)
		}
		infraManager = im
	case "external":
		infraManager = infra.NewExternalInfraManager(cfg.AgentAPIUrl)
	}

	RegisterFailHandler(Fail)
	if !RunSpecs(&testing.T{}, "E2E Suite") {
		os.Exit(1)
	}
}
