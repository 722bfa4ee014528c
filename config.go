package headinject

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register configuration tags with sentinel
	sentinel.Tag("rum.key")
	sentinel.Tag("rum.required")
	sentinel.Tag("rum.rate")
}

// PrivacyLevel controls what Session Replay records.
type PrivacyLevel string

const (
	PrivacyAllow         PrivacyLevel = "allow"
	PrivacyMask          PrivacyLevel = "mask"
	PrivacyMaskUserInput PrivacyLevel = "mask-user-input"
)

// DefaultSite is used when no site is configured.
const DefaultSite = "datadoghq.com"

// supportedMajorVersions lists the Browser SDK major versions a snippet can load.
var supportedMajorVersions = []uint32{5, 6}

// sitePatterns are substrings one of which every accepted site contains.
var sitePatterns = []string{"datadog", "ddog", "datad0g", "dd0g"}

// Configuration selects the Browser SDK version and its settings.
type Configuration struct {
	MajorVersion uint32
	RUM          RumConfiguration
}

// RumConfiguration holds the settings passed to the RUM SDK init call.
//
// Tags declare the document key (rum.key), mandatory settings (rum.required,
// whose value names the setting in errors), and sample rates limited to
// 0..100 (rum.rate). Nil pointers are omitted from the rendered snippet.
type RumConfiguration struct {
	ApplicationID           string        `rum.key:"applicationId" rum.required:"application_id"`
	ClientToken             string        `rum.key:"clientToken" rum.required:"client_token"`
	Site                    *string       `rum.key:"site"`
	Service                 *string       `rum.key:"service"`
	Env                     *string       `rum.key:"env"`
	Version                 *string       `rum.key:"version"`
	TrackUserInteractions   *bool         `rum.key:"trackUserInteractions"`
	TrackResources          *bool         `rum.key:"trackResources"`
	TrackLongTask           *bool         `rum.key:"trackLongTask"`
	DefaultPrivacyLevel     *PrivacyLevel `rum.key:"defaultPrivacyLevel"`
	SessionSampleRate       *float32      `rum.key:"sessionSampleRate" rum.rate:"session sample rate"`
	SessionReplaySampleRate *float32      `rum.key:"sessionReplaySampleRate" rum.rate:"session replay sample rate"`

	// Other keeps settings this package does not know about so they reach the
	// SDK unchanged.
	Other map[string]any
}

// rumFieldPlan describes how one RumConfiguration field is decoded, validated
// and rendered.
type rumFieldPlan struct {
	index    []int
	key      string
	required string
	rate     string
	typ      reflect.Type
}

var (
	rumPlansOnce sync.Once
	rumPlans     []rumFieldPlan
	rumKeys      map[string]int
)

// getRumPlans builds field plans from the RumConfiguration tags once.
func getRumPlans() []rumFieldPlan {
	rumPlansOnce.Do(func() {
		spec := sentinel.Scan[RumConfiguration]()
		for _, field := range spec.Fields {
			key, ok := field.Tags["rum.key"]
			if !ok {
				continue
			}
			rumPlans = append(rumPlans, rumFieldPlan{
				index:    append([]int{}, field.Index...),
				key:      key,
				required: field.Tags["rum.required"],
				rate:     field.Tags["rum.rate"],
				typ:      field.ReflectType,
			})
		}
		// Declaration order drives the rendered key order.
		sort.SliceStable(rumPlans, func(i, j int) bool {
			return rumPlans[i].index[0] < rumPlans[j].index[0]
		})
		rumKeys = make(map[string]int, len(rumPlans))
		for i, plan := range rumPlans {
			rumKeys[plan.key] = i
		}
	})
	return rumPlans
}

// ParseConfiguration decodes a configuration document with c.
//
// The document is an object with "majorVersion" and "rum" keys; "rum" holds
// the SDK settings in their camelCase form. Unknown settings are preserved in
// RumConfiguration.Other. The result is not validated; see Validate.
func ParseConfiguration(c Codec, data []byte) (*Configuration, error) {
	var doc map[string]any
	if err := c.Unmarshal(data, &doc); err != nil {
		return nil, newParseError("", err)
	}
	if doc == nil {
		return nil, newParseError("", fmt.Errorf("expected an object"))
	}
	return configurationFromMap(doc)
}

// configurationFromMap maps a generic decoded document onto a Configuration.
func configurationFromMap(doc map[string]any) (*Configuration, error) {
	cfg := &Configuration{}

	rawVersion, ok := doc["majorVersion"]
	if !ok || rawVersion == nil {
		return nil, newParseError("majorVersion", fmt.Errorf("missing field `majorVersion`"))
	}
	version, ok := toFloat(rawVersion)
	if !ok || version < 0 || version > math.MaxUint32 || version != math.Trunc(version) {
		return nil, newParseError("majorVersion", fmt.Errorf("invalid value %v for `majorVersion`, expected u32", rawVersion))
	}
	cfg.MajorVersion = uint32(version)

	rawRUM, ok := doc["rum"]
	if !ok || rawRUM == nil {
		return nil, newParseError("rum", fmt.Errorf("missing field `rum`"))
	}
	rum, ok := toMap(rawRUM)
	if !ok {
		return nil, newParseError("rum", fmt.Errorf("invalid type for `rum`, expected an object"))
	}

	plans := getRumPlans()
	rv := reflect.ValueOf(&cfg.RUM).Elem()
	for key, raw := range rum {
		i, known := rumKeys[key]
		if !known {
			if cfg.RUM.Other == nil {
				cfg.RUM.Other = make(map[string]any)
			}
			cfg.RUM.Other[key] = normalize(raw)
			continue
		}
		if raw == nil {
			continue
		}
		if err := assignField(rv.FieldByIndex(plans[i].index), plans[i], raw); err != nil {
			return nil, err
		}
	}

	if level := cfg.RUM.DefaultPrivacyLevel; level != nil && !level.valid() {
		return nil, newParseError("defaultPrivacyLevel", fmt.Errorf(
			"unknown variant `%s`, expected one of `allow`, `mask`, `mask-user-input`", *level))
	}

	return cfg, nil
}

func (l PrivacyLevel) valid() bool {
	switch l {
	case PrivacyAllow, PrivacyMask, PrivacyMaskUserInput:
		return true
	}
	return false
}

// assignField stores raw into field, converting it to the field type.
func assignField(field reflect.Value, plan rumFieldPlan, raw any) error {
	typ := plan.typ
	ptr := typ.Kind() == reflect.Pointer
	if ptr {
		typ = typ.Elem()
	}

	var value reflect.Value
	switch typ.Kind() {
	case reflect.String:
		s, ok := raw.(string)
		if !ok {
			return invalidType(plan.key, raw, "a string")
		}
		value = reflect.ValueOf(s).Convert(typ)
	case reflect.Bool:
		b, ok := raw.(bool)
		if !ok {
			return invalidType(plan.key, raw, "a boolean")
		}
		value = reflect.ValueOf(b)
	case reflect.Float32:
		f, ok := toFloat(raw)
		if !ok {
			return invalidType(plan.key, raw, "a number")
		}
		value = reflect.ValueOf(float32(f))
	default:
		return fmt.Errorf("headinject: unsupported field type %s", plan.typ)
	}

	if ptr {
		p := reflect.New(typ)
		p.Elem().Set(value)
		field.Set(p)
		return nil
	}
	field.Set(value)
	return nil
}

func invalidType(key string, raw any, want string) error {
	return newParseError(key, fmt.Errorf("invalid type %T for `%s`, expected %s", raw, key, want))
}

// Validate checks the configuration against the supported versions, mandatory
// settings, accepted sites and rate bounds, in that order.
func (c *Configuration) Validate() error {
	supported := false
	for _, v := range supportedMajorVersions {
		if c.MajorVersion == v {
			supported = true
			break
		}
	}
	if !supported {
		return newValidationError(ErrUnsupportedMajorVersion, "majorVersion", c.MajorVersion)
	}

	plans := getRumPlans()
	rv := reflect.ValueOf(&c.RUM).Elem()

	for _, plan := range plans {
		if plan.required == "" {
			continue
		}
		if rv.FieldByIndex(plan.index).String() == "" {
			return newValidationError(ErrEmptyMandatoryConf, plan.required, "")
		}
	}

	if c.RUM.Site != nil && !isDatadogSite(*c.RUM.Site) {
		return newValidationError(ErrUnsupportedSite, "site", *c.RUM.Site)
	}

	for _, plan := range plans {
		if plan.rate == "" {
			continue
		}
		field := rv.FieldByIndex(plan.index)
		if field.IsNil() {
			continue
		}
		rate := float32(field.Elem().Float())
		if !(rate >= 0 && rate <= 100) {
			return newValidationError(ErrOutOfRangeRate, plan.rate, rate)
		}
	}

	return nil
}

// site returns the configured site or DefaultSite.
func (c *Configuration) site() string {
	if c.RUM.Site != nil {
		return *c.RUM.Site
	}
	return DefaultSite
}

func isDatadogSite(site string) bool {
	for _, pattern := range sitePatterns {
		if strings.Contains(site, pattern) {
			return true
		}
	}
	return false
}

// MarshalJSON renders the settings as a compact object: known settings in
// declaration order, then unknown settings sorted by key. HTML characters are
// not escaped.
func (r RumConfiguration) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	member := func(key string, value any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := encodeJSON(&buf, key); err != nil {
			return err
		}
		buf.WriteByte(':')
		return encodeJSON(&buf, value)
	}

	rv := reflect.ValueOf(&r).Elem()
	for _, plan := range getRumPlans() {
		field := rv.FieldByIndex(plan.index)
		if field.Kind() == reflect.Pointer {
			if field.IsNil() {
				continue
			}
			field = field.Elem()
		}
		if err := member(plan.key, field.Interface()); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(r.Other))
	for k := range r.Other {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := member(k, r.Other[k]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeJSON appends the compact encoding of v without HTML escaping.
func encodeJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// toFloat converts any numeric representation produced by the codecs.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// toMap converts the object representations produced by the codecs:
// string-keyed maps, interface-keyed maps (YAML), and ordered key/value
// documents (BSON).
func toMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, true
	case reflect.Slice:
		elem := rv.Type().Elem()
		if elem.Kind() != reflect.Struct {
			return nil, false
		}
		keyField, hasKey := elem.FieldByName("Key")
		valueField, hasValue := elem.FieldByName("Value")
		if !hasKey || !hasValue || keyField.Type.Kind() != reflect.String {
			return nil, false
		}
		out := make(map[string]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			e := rv.Index(i)
			out[e.FieldByIndex(keyField.Index).String()] = e.FieldByIndex(valueField.Index).Interface()
		}
		return out, true
	}
	return nil, false
}

// normalize rewrites nested codec-specific containers into plain maps and
// slices so unknown settings encode as JSON.
func normalize(v any) any {
	if m, ok := toMap(v); ok {
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = normalize(val)
		}
		return out
	}
	switch s := v.(type) {
	case []any:
		out := make([]any, len(s))
		for i, val := range s {
			out[i] = normalize(val)
		}
		return out
	case []byte:
		return s
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	}
	return v
}
