// Package loader reads simulation configurations from any afs location
// (file, mem, embed, cloud storage) in YAML or JSON form.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"github.com/viant/simrun/model"
	"github.com/viant/structology/conv"
	"gopkg.in/yaml.v3"
)

// Service loads simulation configurations.
type Service struct {
	fs        afs.Service
	baseURL   string
	options   []storage.Option
	converter *conv.Converter
	env       func(string) string
}

// Load loads the configuration at URL and applies key=value overrides.
// Relative URLs are resolved against the service base URL. ${env.KEY}
// expressions in the document are expanded before decoding. Override keys are
// dot separated paths, e.g. "players.0.power=650"; values are parsed as YAML
// scalars.
func (s *Service) Load(ctx context.Context, URL string, overrides ...string) (*model.SimConfig, error) {
	URL = s.resolve(URL)
	data, err := s.fs.DownloadWithURL(ctx, URL, s.options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %v: %w", URL, err)
	}
	document, err := Decode(path.Ext(URL), expandEnv(data, s.env))
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	for _, override := range overrides {
		if err = Override(document, override); err != nil {
			return nil, err
		}
	}
	return s.Convert(document)
}

// Convert converts a decoded document into a typed configuration.
func (s *Service) Convert(document map[string]interface{}) (*model.SimConfig, error) {
	ret := &model.SimConfig{}
	if err := s.converter.Convert(document, ret); err != nil {
		return nil, fmt.Errorf("failed to convert config: %w", err)
	}
	return ret, nil
}

func (s *Service) resolve(URL string) string {
	if s.baseURL == "" || strings.Contains(URL, "://") || strings.HasPrefix(URL, "/") {
		return URL
	}
	return url.Join(s.baseURL, URL)
}

// Decode decodes YAML or JSON data into a generic document.
func Decode(ext string, data []byte) (map[string]interface{}, error) {
	document := map[string]interface{}{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &document); err != nil {
			return nil, err
		}
	case ".json":
		if err := json.Unmarshal(data, &document); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, ext)
	}
	return document, nil
}

// Override sets a dotted path of document to the YAML scalar value of
// expression, creating intermediate maps as needed.
func Override(document map[string]interface{}, expression string) error {
	key, literal, ok := strings.Cut(expression, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("%w: %q", ErrInvalidOverride, expression)
	}
	var value interface{}
	if err := yaml.Unmarshal([]byte(literal), &value); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidOverride, expression, err)
	}
	segments := strings.Split(key, ".")
	var node interface{} = document
	for i, segment := range segments {
		last := i == len(segments)-1
		switch actual := node.(type) {
		case map[string]interface{}:
			if last {
				actual[segment] = value
				return nil
			}
			next, ok := actual[segment]
			if !ok || next == nil {
				next = map[string]interface{}{}
				actual[segment] = next
			}
			node = next
		case []interface{}:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(actual) {
				return fmt.Errorf("%w: %q: index %v out of range", ErrInvalidOverride, expression, segment)
			}
			if last {
				actual[index] = value
				return nil
			}
			node = actual[index]
		default:
			return fmt.Errorf("%w: %q: %v is not a container", ErrInvalidOverride, expression, strings.Join(segments[:i], "."))
		}
	}
	return nil
}

// New creates a loader; options are passed to every download (e.g. an
// embed.FS for embed:// URLs).
func New(fs afs.Service, baseURL string, options ...storage.Option) *Service {
	convOptions := conv.DefaultOptions()
	convOptions.IgnoreUnmapped = true
	if fs == nil {
		fs = afs.New()
	}
	return &Service{
		fs:        fs,
		baseURL:   baseURL,
		options:   options,
		converter: conv.NewConverter(convOptions),
	}
}
