package catalog

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// optionAxes is the ordered list of option axes that may be encoded into a
// product slug. Adding an axis here is all that is needed to encode, decode
// and strip it.
var optionAxes = []string{"color"}

// axisPatterns locates each axis token inside a slug. Matching is applied
// once per axis: a handle that legitimately contains "-color_" is misread,
// which is preserved for URL compatibility with existing links.
var axisPatterns = map[string]*regexp.Regexp{}

func init() {
	for _, axis := range optionAxes {
		axisPatterns[axis] = regexp.MustCompile(fmt.Sprintf(`-%s_([a-zA-Z0-9\s]+)`, axis))
	}
}

// EncodeOptions appends the selected option values to a product handle,
// producing a URL path segment slug. Axes with no selected value are skipped.
func EncodeOptions(handle string, options map[string]string) string {
	var b strings.Builder
	b.WriteString(handle)
	for _, axis := range optionAxes {
		if v := options[axis]; v != "" {
			b.WriteString("-")
			b.WriteString(axis)
			b.WriteString("_")
			b.WriteString(v)
		}
	}
	return b.String()
}

// DecodeOptions extracts the encoded option values from a slug. The slug is
// percent-decoded before matching so encoded path segments are interpreted
// correctly; decoded values are lower-cased. Axes without a recognizable
// token are absent from the result.
func DecodeOptions(slug string) map[string]string {
	decoded := unescape(slug)
	options := make(map[string]string, len(optionAxes))
	for _, axis := range optionAxes {
		if m := axisPatterns[axis].FindStringSubmatch(decoded); m != nil {
			options[axis] = strings.ToLower(m[1])
		}
	}
	return options
}

// StripOptions removes the encoded option tokens from a slug, returning the
// bare product handle. Like DecodeOptions, only the first occurrence of each
// axis token is removed.
func StripOptions(slug string) string {
	handle := unescape(slug)
	for _, axis := range optionAxes {
		if loc := axisPatterns[axis].FindStringIndex(handle); loc != nil {
			handle = handle[:loc[0]] + handle[loc[1]:]
		}
	}
	return handle
}

func unescape(slug string) string {
	decoded, err := url.PathUnescape(slug)
	if err != nil {
		return slug
	}
	return decoded
}
