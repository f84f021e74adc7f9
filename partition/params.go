// CLAUDE:SUMMARY Environment-derived partition options: boolean/int/list parsing, strategy validation, multipart form rendering.
package partition

import (
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// DefaultServerURL is the hosted partition endpoint used when no
// override is configured.
const DefaultServerURL = "https://api.unstructuredapp.io"

// ServerURLEnv overrides the service endpoint (self-hosted deployments).
const ServerURLEnv = "UNSTRUCTURED_API_URL"

// Processing strategies accepted by the partition service.
const (
	StrategyFast    = "fast"
	StrategyHiRes   = "hi_res"
	StrategyAuto    = "auto"
	StrategyOCROnly = "ocr_only"
)

var validStrategies = map[string]bool{
	StrategyFast:    true,
	StrategyHiRes:   true,
	StrategyAuto:    true,
	StrategyOCROnly: true,
}

// Env reads configuration values, usually os.Getenv. Injected so tests
// and embedders can supply a fixed mapping instead of ambient state.
type Env func(string) string

// EnvMap returns an Env backed by a fixed map.
func EnvMap(m map[string]string) Env {
	return func(k string) string { return m[k] }
}

// ServerURL reads the endpoint override from the environment, trimmed.
// "" means the default endpoint applies.
func ServerURL(env Env) string {
	if env == nil {
		env = os.Getenv
	}
	return strings.TrimSpace(env(ServerURLEnv))
}

// Params is the resolved partition configuration. Pointer fields are
// tri-state: nil means unset and the option is omitted from the
// request. Booleans always carry a resolved value.
type Params struct {
	Strategy               string   `json:"strategy"`
	Coordinates            bool     `json:"coordinates"`
	IncludePageBreaks      bool     `json:"include_page_breaks"`
	UniqueElementIDs       bool     `json:"unique_element_ids"`
	Languages              []string `json:"languages,omitempty"`
	MultipageSections      bool     `json:"multipage_sections"`
	CombineUnderNChars     *int     `json:"combine_under_n_chars,omitempty"`
	MaxCharacters          *int     `json:"max_characters,omitempty"`
	NewAfterNChars         *int     `json:"new_after_n_chars,omitempty"`
	Overlap                *int     `json:"overlap,omitempty"`
	OverlapAll             bool     `json:"overlap_all"`
	IncludeSlideNotes      *bool    `json:"include_slide_notes,omitempty"`
	PDFInferTableStructure bool     `json:"pdf_infer_table_structure"`
	SkipInferTableTypes    []string `json:"skip_infer_table_types,omitempty"`
	ExtractImageBlockTypes []string `json:"extract_image_block_types,omitempty"`
	HiResModelName         string   `json:"hi_res_model_name,omitempty"`
}

// ResolveParams reads the partition options from the environment.
// Invalid values never fail a request: they are corrected to the
// documented default with a warning.
func ResolveParams(env Env, logger *slog.Logger) Params {
	if env == nil {
		env = os.Getenv
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := Params{
		Strategy:               StrategyFast,
		Coordinates:            envBool(env, "COORDINATES", true),
		IncludePageBreaks:      envBool(env, "INCLUDE_PAGE_BREAKS", false),
		UniqueElementIDs:       envBool(env, "UNIQUE_ELEMENT_IDS", true),
		Languages:              envList(env, "LANGUAGES"),
		MultipageSections:      envBool(env, "MULTIPAGE_SECTIONS", true),
		CombineUnderNChars:     envInt(env, logger, "COMBINE_UNDER_N_CHARS"),
		MaxCharacters:          envInt(env, logger, "MAX_CHARACTERS"),
		NewAfterNChars:         envInt(env, logger, "NEW_AFTER_N_CHARS"),
		Overlap:                envInt(env, logger, "OVERLAP"),
		OverlapAll:             envBool(env, "OVERLAP_ALL", false),
		IncludeSlideNotes:      envBoolOpt(env, "INCLUDE_SLIDE_NOTES"),
		PDFInferTableStructure: envBool(env, "PDF_INFER_TABLE_STRUCTURE", true),
		SkipInferTableTypes:    envList(env, "SKIP_INFER_TABLE_TYPES"),
		ExtractImageBlockTypes: envList(env, "EXTRACT_IMAGE_BLOCK_TYPES"),
	}

	if v := env("STRATEGY"); v != "" {
		if validStrategies[v] {
			p.Strategy = v
		} else {
			logger.Warn("invalid STRATEGY, falling back to fast", "value", v)
		}
	}

	if model := env("HI_RES_MODEL_NAME"); model != "" {
		if p.Strategy == StrategyHiRes {
			p.HiResModelName = model
		} else {
			logger.Warn("HI_RES_MODEL_NAME ignored: strategy is not hi_res",
				"strategy", p.Strategy, "model", model)
		}
	}

	return p
}

// Values renders the options as multipart form fields. Only set or
// applicable options appear; list options become repeated fields;
// booleans are "true"/"false" strings.
func (p Params) Values() url.Values {
	v := url.Values{}
	v.Set("strategy", p.Strategy)
	v.Set("coordinates", strconv.FormatBool(p.Coordinates))
	v.Set("include_page_breaks", strconv.FormatBool(p.IncludePageBreaks))
	v.Set("unique_element_ids", strconv.FormatBool(p.UniqueElementIDs))
	v.Set("multipage_sections", strconv.FormatBool(p.MultipageSections))
	v.Set("overlap_all", strconv.FormatBool(p.OverlapAll))
	v.Set("pdf_infer_table_structure", strconv.FormatBool(p.PDFInferTableStructure))

	for _, l := range p.Languages {
		v.Add("languages", l)
	}
	for _, t := range p.SkipInferTableTypes {
		v.Add("skip_infer_table_types", t)
	}
	for _, t := range p.ExtractImageBlockTypes {
		v.Add("extract_image_block_types", t)
	}

	if p.CombineUnderNChars != nil {
		v.Set("combine_under_n_chars", strconv.Itoa(*p.CombineUnderNChars))
	}
	if p.MaxCharacters != nil {
		v.Set("max_characters", strconv.Itoa(*p.MaxCharacters))
	}
	if p.NewAfterNChars != nil {
		v.Set("new_after_n_chars", strconv.Itoa(*p.NewAfterNChars))
	}
	if p.Overlap != nil {
		v.Set("overlap", strconv.Itoa(*p.Overlap))
	}
	if p.IncludeSlideNotes != nil {
		v.Set("include_slide_notes", strconv.FormatBool(*p.IncludeSlideNotes))
	}
	if p.HiResModelName != "" {
		v.Set("hi_res_model_name", p.HiResModelName)
	}
	return v
}

// envBool parses an environment boolean: "1", "true", "yes"
// (case-insensitive) are true, any other non-empty value is false,
// unset keeps def.
func envBool(env Env, key string, def bool) bool {
	v := env(key)
	if v == "" {
		return def
	}
	return parseBool(v)
}

// envBoolOpt is envBool without a default: unset stays nil so the
// option is omitted from the request entirely.
func envBoolOpt(env Env, key string) *bool {
	v := env(key)
	if v == "" {
		return nil
	}
	b := parseBool(v)
	return &b
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// envInt parses an optional integer. Invalid values are dropped with a
// warning rather than failing the request.
func envInt(env Env, logger *slog.Logger, key string) *int {
	v := strings.TrimSpace(env(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn("invalid integer in environment, ignoring", "key", key, "value", v)
		return nil
	}
	return &n
}

// envList splits a comma-separated value, trimming entries and dropping
// empties. nil when nothing remains.
func envList(env Env, key string) []string {
	v := env(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
