package params

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/radsafe/doserisk/internal/dose"
)

//go:embed beir.yaml
var embeddedTable []byte

//go:embed schema.cue
var schemaSource string

// ValidationError reports a coefficient table that failed load-time
// validation. Path locates the offending field.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid parameter table: %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("invalid parameter table: %s", e.Message)
}

// IsValidation reports whether err is a parameter-table validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// fileSchema mirrors the YAML document layout.
type fileSchema struct {
	Metadata       Metadata                     `yaml:"_metadata"`
	Configurations map[dose.Organ]*OrganConfig  `yaml:"configurations"`
}

// Default loads the embedded coefficient table. The embedded table is part
// of the build, so failure here is a programming error and panics.
func Default() *Set {
	set, err := Load(embeddedTable)
	if err != nil {
		panic(fmt.Sprintf("embedded parameter table invalid: %v", err))
	}
	return set
}

// LoadFile loads and validates a coefficient table from an external YAML
// file.
func LoadFile(path string) (*Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading parameter table: %w", err)
	}
	return Load(raw)
}

// Load parses and validates a YAML coefficient table. Validation is
// fail-fast and happens entirely at load time: once a Set is returned, every
// organ x sex x model combination the pipeline can request is resolvable.
func Load(raw []byte) (*Set, error) {
	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	var file fileSchema
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("decoding YAML: %v", err)}
	}

	configs := make(map[dose.Organ]OrganConfig, len(file.Configurations))
	for organ, cfg := range file.Configurations {
		if cfg == nil {
			return nil, &ValidationError{Path: string(organ), Message: "empty configuration"}
		}
		if err := checkOrgan(organ, *cfg); err != nil {
			return nil, err
		}
		configs[organ] = *cfg
	}

	// Exhaustiveness: a missing organ must surface at startup, not as a
	// compute-time lookup failure.
	for _, organ := range dose.KnownOrgans {
		if _, ok := configs[organ]; !ok {
			return nil, &ValidationError{Path: string(organ), Message: "no configuration for known organ"}
		}
	}

	return &Set{Metadata: file.Metadata, configs: configs}, nil
}

// validateSchema checks the raw YAML against the embedded CUE schema before
// any Go-side decoding, so structural mistakes fail with a precise path.
func validateSchema(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return &ValidationError{Message: fmt.Sprintf("decoding YAML: %v", err)}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		return &ValidationError{Message: fmt.Sprintf("compiling schema: %v", err)}
	}

	value := ctx.Encode(doc)
	if err := value.Err(); err != nil {
		return &ValidationError{Message: fmt.Sprintf("encoding table: %v", err)}
	}

	unified := schema.Unify(value)
	if err := unified.Validate(); err != nil {
		errs := cueerrors.Errors(err)
		if len(errs) > 0 {
			first := errs[0]
			return &ValidationError{
				Path:    strings.Join(cueerrors.Path(first), "."),
				Message: first.Error(),
			}
		}
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

// checkOrgan enforces the semantic rules the structural schema cannot
// express.
func checkOrgan(organ dose.Organ, cfg OrganConfig) error {
	path := string(organ)

	switch cfg.BEIRVII.ModelType {
	case VIISolid:
		if cfg.BEIRVII.DDREF <= 0 {
			return &ValidationError{Path: path + ".beir_vii.ddref", Message: "solid model requires ddref > 0"}
		}
	case VIILeukemia:
		// theta/delta/phi may legitimately be zero; nothing further to check
	default:
		return &ValidationError{
			Path:    path + ".beir_vii.model_type",
			Message: fmt.Sprintf("unknown model type %q", cfg.BEIRVII.ModelType),
		}
	}
	if cfg.BEIRVII.Beta.Male == nil && cfg.BEIRVII.Beta.Female == nil {
		return &ValidationError{Path: path + ".beir_vii.beta", Message: "beta absent for both sexes"}
	}
	if cfg.BEIRVII.Latency < 0 {
		return &ValidationError{Path: path + ".beir_vii.latency", Message: "latency must be non-negative"}
	}

	switch cfg.BEIRV.ModelType {
	case VLinear:
		if cfg.BEIRV.Coef.Male == nil && cfg.BEIRV.Coef.Female == nil {
			return &ValidationError{Path: path + ".beir_v.coef", Message: "coef absent for both sexes"}
		}
	case VBreast:
		if len(cfg.BEIRV.AgeBrackets) == 0 {
			return &ValidationError{Path: path + ".beir_v.age_brackets", Message: "breast model requires age brackets"}
		}
		for i, b := range cfg.BEIRV.AgeBrackets {
			if i > 0 && b.MaxAge <= cfg.BEIRV.AgeBrackets[i-1].MaxAge {
				return &ValidationError{
					Path:    fmt.Sprintf("%s.beir_v.age_brackets[%d]", path, i),
					Message: "brackets must be strictly increasing in max_age",
				}
			}
		}
	case VThyroid:
		if cfg.BEIRV.ThresholdAge <= 0 {
			return &ValidationError{Path: path + ".beir_v.threshold_age", Message: "thyroid model requires threshold_age > 0"}
		}
	case VLeukemiaQ:
		if len(cfg.BEIRV.TimeWindows) == 0 {
			return &ValidationError{Path: path + ".beir_v.time_windows", Message: "leukemia model requires time windows"}
		}
		for i, w := range cfg.BEIRV.TimeWindows {
			if len(w.Intervals) == 0 {
				return &ValidationError{
					Path:    fmt.Sprintf("%s.beir_v.time_windows[%d]", path, i),
					Message: "window has no intervals",
				}
			}
			for j, iv := range w.Intervals {
				if j > 0 && iv.MaxYearsSince <= w.Intervals[j-1].MaxYearsSince {
					return &ValidationError{
						Path:    fmt.Sprintf("%s.beir_v.time_windows[%d].intervals[%d]", path, i, j),
						Message: "intervals must be strictly increasing in max_years_since",
					}
				}
			}
		}
	default:
		return &ValidationError{
			Path:    path + ".beir_v.model_type",
			Message: fmt.Sprintf("unknown model type %q", cfg.BEIRV.ModelType),
		}
	}

	return nil
}
