package scenario

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nino-chavez/brand-site-sub018/browser"
	"github.com/nino-chavez/brand-site-sub018/types"
)

// File is a declarative scenario group loaded from YAML.
type File struct {
	Group     string         `yaml:"group"     json:"group"     jsonschema:"required,minLength=1"`
	Scenarios []FileScenario `yaml:"scenarios" json:"scenarios" jsonschema:"required,minItems=1"`
}

// FileScenario is one scenario of a File.
type FileScenario struct {
	Name           string   `yaml:"name"                      json:"name"                      jsonschema:"required,minLength=1"`
	Description    string   `yaml:"description,omitempty"     json:"description,omitempty"`
	Category       string   `yaml:"category"                  json:"category"                  jsonschema:"required,enum=context,enum=null-safety,enum=hooks,enum=async,enum=dom,enum=type,enum=integration,enum=layout"`
	ExpectedErrors []string `yaml:"expected_errors,omitempty" json:"expected_errors,omitempty"`
	MaxDuration    string   `yaml:"max_duration,omitempty"    json:"max_duration,omitempty"    jsonschema:"pattern=^[0-9]+(ms|s|m)$"`
	Steps          []Step   `yaml:"steps"                     json:"steps"                     jsonschema:"required,minItems=1"`
}

// Step is one user action.
type Step struct {
	Action   string            `yaml:"action"             json:"action"             jsonschema:"required,enum=goto,enum=reload,enum=back,enum=move,enum=down,enum=up,enum=wheel,enum=press,enum=resize,enum=wait,enum=emit"`
	URL      string            `yaml:"url,omitempty"      json:"url,omitempty"`
	Query    map[string]string `yaml:"query,omitempty"    json:"query,omitempty"`
	Hash     string            `yaml:"hash,omitempty"     json:"hash,omitempty"`
	X        float64           `yaml:"x,omitempty"        json:"x,omitempty"`
	Y        float64           `yaml:"y,omitempty"        json:"y,omitempty"`
	DX       float64           `yaml:"dx,omitempty"       json:"dx,omitempty"`
	DY       float64           `yaml:"dy,omitempty"       json:"dy,omitempty"`
	Key      string            `yaml:"key,omitempty"      json:"key,omitempty"`
	Width    int               `yaml:"width,omitempty"    json:"width,omitempty"    jsonschema:"minimum=0"`
	Height   int               `yaml:"height,omitempty"   json:"height,omitempty"   jsonschema:"minimum=0"`
	Duration string            `yaml:"duration,omitempty" json:"duration,omitempty" jsonschema:"pattern=^[0-9]+(ms|s|m)$"`
	Repeat   int               `yaml:"repeat,omitempty"   json:"repeat,omitempty"   jsonschema:"minimum=0"`
	Message  string            `yaml:"message,omitempty"  json:"message,omitempty"`
}

// ValidationError is a single problem found in a scenario file.
type ValidationError struct {
	Phase   string `json:"phase"` // structural, semantic, domain
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %s", e.Phase, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Phase, e.Path, e.Message)
}

// FileError collects every problem of one file.
type FileError struct {
	File     string
	Problems []*ValidationError
}

func (e *FileError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return fmt.Sprintf("scenario file %s: %s", e.File, strings.Join(msgs, "; "))
}

// Decode parses a scenario file with strict unknown-field rejection.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode scenario file: %w", err)
	}
	return &f, nil
}

// LoadFile reads, validates and builds the group declared in path.
func LoadFile(path string) (Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Group{}, fmt.Errorf("read scenario file: %w", err)
	}
	return Load(path, data)
}

// Load validates data in three phases (strict decode, JSON Schema, domain
// rules) and builds the group. name labels errors.
func Load(name string, data []byte) (Group, error) {
	f, problems := Validate(data)
	if len(problems) > 0 {
		return Group{}, &FileError{File: name, Problems: problems}
	}
	return f.Build()
}

// Validate runs every validation phase and returns the decoded file with
// the problems found. A structural failure stops validation.
func Validate(data []byte) (*File, []*ValidationError) {
	f, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, []*ValidationError{{Phase: "structural", Message: err.Error()}}
	}
	if problems := validateSemantic(f); len(problems) > 0 {
		return f, problems
	}
	return f, f.validateDomain()
}

func (f *File) validateDomain() []*ValidationError {
	var errs []*ValidationError
	add := func(path, format string, args ...any) {
		errs = append(errs, &ValidationError{Phase: "domain", Path: path, Message: fmt.Sprintf(format, args...)})
	}

	seen := map[string]bool{}
	for i, s := range f.Scenarios {
		sp := fmt.Sprintf("scenarios[%d]", i)
		if seen[s.Name] {
			add(sp+".name", "duplicate scenario name %q", s.Name)
		}
		seen[s.Name] = true
		for j, t := range s.ExpectedErrors {
			if _, err := types.ParseErrorType(t); err != nil {
				add(fmt.Sprintf("%s.expected_errors[%d]", sp, j), "%v", err)
			}
		}
		for j, st := range s.Steps {
			path := fmt.Sprintf("%s.steps[%d]", sp, j)
			switch st.Action {
			case "press":
				if _, err := browser.LookupKey(st.Key); err != nil {
					add(path+".key", "%v (have %s)", err, strings.Join(browser.KeyNames(), ", "))
				}
			case "resize":
				if st.Width <= 0 || st.Height <= 0 {
					add(path, "resize needs positive width and height")
				}
			case "wait":
				if st.Duration == "" {
					add(path+".duration", "wait needs a duration")
				}
			case "emit":
				if st.Message == "" {
					add(path+".message", "emit needs a message")
				}
			case "goto":
				if st.URL != "" {
					if _, err := url.Parse(st.URL); err != nil {
						add(path+".url", "%v", err)
					}
				}
			}
		}
	}
	return errs
}

// Build converts the file into a Group. Call Validate first.
func (f *File) Build() (Group, error) {
	g := Group{Name: f.Group}
	for _, fs := range f.Scenarios {
		s, err := fs.build()
		if err != nil {
			return Group{}, err
		}
		if err := s.Validate(); err != nil {
			return Group{}, err
		}
		g.Scenarios = append(g.Scenarios, s)
	}
	return g, nil
}

func (fs FileScenario) build() (Scenario, error) {
	s := Scenario{
		Name:        fs.Name,
		Description: fs.Description,
		Category:    Category(fs.Category),
	}
	for _, t := range fs.ExpectedErrors {
		et, err := types.ParseErrorType(t)
		if err != nil {
			return Scenario{}, fmt.Errorf("scenario %q: %w", fs.Name, err)
		}
		s.ExpectedErrors = append(s.ExpectedErrors, et)
	}
	if fs.MaxDuration != "" {
		d, err := time.ParseDuration(fs.MaxDuration)
		if err != nil {
			return Scenario{}, fmt.Errorf("scenario %q: max_duration: %w", fs.Name, err)
		}
		s.MaxDuration = d
	}
	steps := make([]Step, len(fs.Steps))
	copy(steps, fs.Steps)
	s.Execute = func(ctx context.Context, page browser.Page) error {
		base, err := BaseURL(ctx, page)
		if err != nil {
			return err
		}
		for i, st := range steps {
			n := st.Repeat
			if n <= 0 {
				n = 1
			}
			for k := 0; k < n; k++ {
				if err := st.run(ctx, page, base); err != nil {
					return fmt.Errorf("step %d (%s): %w", i, st.Action, err)
				}
			}
		}
		return nil
	}
	return s, nil
}

var errUnknownAction = errors.New("unknown action")

func (st Step) run(ctx context.Context, page browser.Page, base *url.URL) error {
	switch st.Action {
	case "goto":
		target, err := st.target(base)
		if err != nil {
			return err
		}
		return page.Goto(ctx, target)
	case "reload":
		return page.Reload(ctx)
	case "back":
		return page.Back(ctx)
	case "move":
		return page.MouseMove(ctx, st.X, st.Y)
	case "down":
		return page.MouseDown(ctx)
	case "up":
		return page.MouseUp(ctx)
	case "wheel":
		return page.Wheel(ctx, st.DX, st.DY)
	case "press":
		return page.Press(ctx, st.Key)
	case "resize":
		return page.SetViewport(ctx, st.Width, st.Height)
	case "wait":
		d, err := time.ParseDuration(st.Duration)
		if err != nil {
			return err
		}
		return Sleep(ctx, d)
	case "emit":
		return Emit(ctx, page, st.Message)
	default:
		return fmt.Errorf("%w %q", errUnknownAction, st.Action)
	}
}

// target resolves the step URL against base and applies query and hash.
func (st Step) target(base *url.URL) (string, error) {
	u := *base
	if st.URL != "" {
		ref, err := url.Parse(st.URL)
		if err != nil {
			return "", err
		}
		u = *base.ResolveReference(ref)
	}
	if len(st.Query) > 0 {
		q := u.Query()
		for k, v := range st.Query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	if st.Hash != "" {
		u.Fragment = strings.TrimPrefix(st.Hash, "#")
	}
	return u.String(), nil
}
