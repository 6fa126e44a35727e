package questions

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/cybersage/internal/catalog"
	"github.com/abhisek/cybersage/internal/llm"
	"github.com/abhisek/cybersage/internal/logger"
)

// Mode selects the question backend.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeLLM    Mode = "llm"
	ModeHTTP   Mode = "http"
	ModeStatic Mode = "static"
)

// ParseMode validates a configured mode string. Empty means auto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeLLM, ModeHTTP, ModeStatic:
		return m, nil
	}
	return "", fmt.Errorf("unknown question source %q (want auto, llm, http or static)", s)
}

// Options configures NewSource.
type Options struct {
	Mode Mode

	// Provider is nil when no LLM is configured.
	Provider llm.Provider
	Catalog  *catalog.Catalog

	HTTP HTTPConfig

	// Cache, when set, fronts remote sources.
	Cache    Cache
	CacheTTL time.Duration
}

// NewSource builds the question source and hinter for opts. In auto mode
// an LLM is preferred, then a configured HTTP backend, then the static bank.
func NewSource(opts Options, log *logger.Logger) (Source, Hinter, error) {
	mode := opts.Mode
	if mode == "" {
		mode = ModeAuto
	}
	if mode == ModeAuto {
		switch {
		case opts.Provider != nil:
			mode = ModeLLM
		case opts.HTTP.BaseURL != "":
			mode = ModeHTTP
		default:
			mode = ModeStatic
		}
	}

	var hinter Hinter = CannedHinter{}
	if opts.Provider != nil {
		hinter = NewLLMHinter(opts.Provider)
	}

	var src Source
	switch mode {
	case ModeStatic:
		bank, err := NewStaticBank()
		if err != nil {
			return nil, nil, err
		}
		return bank, hinter, nil
	case ModeLLM:
		if opts.Provider == nil {
			return nil, nil, errors.New("question source llm requires a configured LLM provider")
		}
		src = NewLLMSource(opts.Provider, opts.Catalog, DefaultLLMConfig(), log)
	case ModeHTTP:
		src = NewHTTPSource(opts.HTTP, log)
	default:
		return nil, nil, fmt.Errorf("unknown question source %q", mode)
	}

	if opts.Cache != nil {
		src = NewCachedSource(src, opts.Cache, opts.CacheTTL, log)
	}
	return src, hinter, nil
}
