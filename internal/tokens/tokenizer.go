package tokens

import (
	"fmt"
	"strings"

	tiktoken "github.com/pkoukk/tiktoken-go"
	hf "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	"go.uber.org/zap"

	"promptforge/internal/logging"
)

// Tokenizer counts tokens in text.
type Tokenizer interface {
	CountTokens(text string) int
	Close()
}

type TiktokenWrapper struct {
	ttk *tiktoken.Tiktoken
}

func (w *TiktokenWrapper) CountTokens(text string) int {
	if w.ttk == nil {
		return 0
	}
	return len(w.ttk.EncodeOrdinary(text))
}

func (w *TiktokenWrapper) Close() {}

type HFTokenizerWrapper struct {
	htk *hf.Tokenizer
}

func (w *HFTokenizerWrapper) CountTokens(text string) int {
	if w.htk == nil {
		return 0
	}
	en, err := w.htk.EncodeSingle(text)
	if err != nil {
		logging.Warn("huggingface tokenizer failed to encode text", zap.Error(err))
		return 0
	}
	return len(en.Tokens)
}

func (w *HFTokenizerWrapper) Close() {}

// HeuristicTokenizer approximates one token per four characters.
type HeuristicTokenizer struct{}

func (HeuristicTokenizer) CountTokens(text string) int {
	n := len([]rune(text))
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}

func (HeuristicTokenizer) Close() {}

const (
	defaultTiktokenModel = "gpt-4o"
	defaultHFModel       = "gpt2"
)

// LoadTokenizer builds the tokenizer named by kind: "tiktoken",
// "huggingface" or "heuristic".
func LoadTokenizer(kind, model, file string) (Tokenizer, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "tiktoken":
		return loadTiktoken(model)
	case "huggingface", "hf":
		return loadHuggingFace(model, file)
	case "heuristic":
		return HeuristicTokenizer{}, nil
	}
	return nil, fmt.Errorf("unsupported tokenizer type: %s", kind)
}

func loadTiktoken(model string) (Tokenizer, error) {
	if model == "" {
		model = defaultTiktokenModel
	}
	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		logging.Warn("tiktoken model not found, using default",
			zap.String("model", model), zap.String("default", defaultTiktokenModel), zap.Error(err))
		tke, err = tiktoken.EncodingForModel(defaultTiktokenModel)
		if err != nil {
			return nil, fmt.Errorf("tiktoken encoding for %s: %w", defaultTiktokenModel, err)
		}
	}
	return &TiktokenWrapper{ttk: tke}, nil
}

func loadHuggingFace(model, file string) (Tokenizer, error) {
	if file != "" {
		ttk, err := pretrained.FromFile(file)
		if err != nil {
			return nil, fmt.Errorf("load tokenizer from %s: %w", file, err)
		}
		return &HFTokenizerWrapper{htk: ttk}, nil
	}
	if model == "" {
		model = defaultHFModel
	}
	configFilePath, err := hf.CachedPath(model, "tokenizer.json")
	if err != nil {
		return nil, fmt.Errorf("cache path for %s: %w", model, err)
	}
	ttk, err := pretrained.FromFile(configFilePath)
	if err != nil {
		return nil, fmt.Errorf("load pretrained tokenizer %s: %w", model, err)
	}
	return &HFTokenizerWrapper{htk: ttk}, nil
}
