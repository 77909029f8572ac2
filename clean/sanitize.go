// Package clean validates and repairs IRIs and composes clean steps into a
// single pass over a graph.
package clean

import (
	"fmt"
	"net/netip"
	"net/url"
	"slices"
	"strings"

	"github.com/geoknoesis/rdf-go/rdf"
)

// DefaultSafe lists the characters ForceClean never escapes, on top of the
// RFC 3986 unreserved set.
const DefaultSafe = "~@#$&()*!+=:;,?/'"

// ExcludedSchemes are schemes CheckValid rejects even when well-formed.
var ExcludedSchemes = []string{"file"}

// CheckValid reports whether uri is a syntactically valid absolute URI.
func CheckValid(uri string) bool {
	p, ok := split(uri)
	if !ok {
		return false
	}
	for i := 0; i < len(uri); i++ {
		c := uri[i]
		switch {
		case c == '%':
			if i+2 >= len(uri) || !isHex(uri[i+1]) || !isHex(uri[i+2]) {
				return false
			}
			i += 2
		case c == '[' || c == ']':
			if !p.bracketedHost || i < p.hostStart || i >= p.hostEnd {
				return false
			}
		case !isURIChar(c):
			return false
		}
	}
	return validPort(p.port)
}

// ForceClean percent-encodes every byte of uri outside the unreserved set,
// DefaultSafe and the extra safe characters. Existing escapes are encoded
// again, so ForceClean(ForceClean(u)) differs from ForceClean(u) whenever
// the first pass escaped something.
func ForceClean(uri string, safe ...string) string {
	extra := strings.Join(safe, "")
	var b strings.Builder
	b.Grow(len(uri))
	for i := 0; i < len(uri); i++ {
		c := uri[i]
		if isUnreserved(c) || strings.IndexByte(DefaultSafe, c) >= 0 ||
			(c < 0x80 && strings.IndexByte(extra, c) >= 0) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

// SmartClean returns uri untouched when it is already valid and its
// ForceClean form otherwise. Strings without a usable scheme, or that
// cleaning cannot repair, come back unchanged. SmartClean is idempotent.
func SmartClean(uri string, safe ...string) string {
	if CheckValid(uri) {
		return uri
	}
	if _, ok := schemeOf(uri); !ok {
		return uri
	}
	cleaned := ForceClean(uri, safe...)
	if !CheckValid(cleaned) {
		return uri
	}
	return cleaned
}

// NormaliseScheme switches an http or https uri to toScheme when its host
// is domain or one of its subdomains. An empty domain matches every host
// and an empty toScheme means "https". Anything else passes through.
func NormaliseScheme(uri, domain, toScheme string) string {
	if toScheme == "" {
		toScheme = "https"
	}
	u, err := url.Parse(uri)
	if err != nil || u.Host == "" {
		return uri
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return uri
	}
	if strings.EqualFold(scheme, toScheme) {
		return uri
	}
	if domain != "" {
		host := strings.ToLower(u.Hostname())
		domain = strings.ToLower(domain)
		if host != domain && !strings.HasSuffix(host, "."+domain) {
			return uri
		}
	}
	return toScheme + uri[len(u.Scheme):]
}

// NormaliseSchemeNode applies NormaliseScheme to IRI terms.
func NormaliseSchemeNode(t rdf.Term, domain, toScheme string) rdf.Term {
	if v, ok := t.(rdf.IRI); ok {
		return rdf.IRI{Value: NormaliseScheme(v.Value, domain, toScheme)}
	}
	return t
}

// CleanNode applies SmartClean to IRI terms.
func CleanNode(t rdf.Term) rdf.Term {
	if v, ok := t.(rdf.IRI); ok {
		return rdf.IRI{Value: SmartClean(v.Value)}
	}
	return t
}

type parts struct {
	scheme        string
	hostStart     int
	hostEnd       int
	bracketedHost bool
	port          string
}

// split locates the scheme and host of uri. It fails when the scheme is
// missing, malformed or excluded, when an authority has an empty host, or
// when an opaque uri has nothing after the scheme.
func split(uri string) (parts, bool) {
	var p parts
	scheme, ok := schemeOf(uri)
	if !ok {
		return p, false
	}
	p.scheme = scheme
	colon := len(scheme)
	rest := uri[colon+1:]
	if !strings.HasPrefix(rest, "//") {
		return p, rest != ""
	}

	start := colon + 3
	end := len(uri)
	if i := strings.IndexAny(uri[start:], "/?#"); i >= 0 {
		end = start + i
	}
	authority := uri[start:end]
	if i := strings.LastIndexByte(authority, '@'); i >= 0 {
		start += i + 1
		authority = authority[i+1:]
	}

	if strings.HasPrefix(authority, "[") {
		closing := strings.IndexByte(authority, ']')
		if closing < 2 || !validIPLiteral(authority[1:closing]) {
			return p, false
		}
		p.bracketedHost = true
		p.hostStart, p.hostEnd = start, start+closing+1
		tail := authority[closing+1:]
		if tail != "" {
			if tail[0] != ':' {
				return p, false
			}
			p.port = tail[1:]
		}
		return p, true
	}

	host := authority
	if i := strings.LastIndexByte(authority, ':'); i >= 0 {
		host, p.port = authority[:i], authority[i+1:]
	}
	p.hostStart, p.hostEnd = start, start+len(host)
	return p, host != ""
}

// schemeOf returns the lower-cased scheme of uri when it is well-formed
// and not excluded.
func schemeOf(uri string) (string, bool) {
	colon := strings.IndexByte(uri, ':')
	if colon <= 0 || !validScheme(uri[:colon]) {
		return "", false
	}
	scheme := strings.ToLower(uri[:colon])
	if slices.Contains(ExcludedSchemes, scheme) {
		return "", false
	}
	return scheme, true
}

// validIPLiteral accepts the contents of a bracketed host: an IPv6
// address, optionally zoned with an escaped "%25", or an IPvFuture form.
func validIPLiteral(s string) bool {
	if s[0] == 'v' || s[0] == 'V' {
		dot := strings.IndexByte(s, '.')
		if dot < 2 || dot == len(s)-1 {
			return false
		}
		for i := 1; i < dot; i++ {
			if !isHex(s[i]) {
				return false
			}
		}
		for i := dot + 1; i < len(s); i++ {
			if c := s[i]; !isUnreserved(c) && strings.IndexByte("!$&'()*+,;=:", c) < 0 {
				return false
			}
		}
		return true
	}
	addr, zone, zoned := strings.Cut(s, "%25")
	if zoned {
		if zone == "" {
			return false
		}
		addr += "%" + zone
	}
	ip, err := netip.ParseAddr(addr)
	return err == nil && ip.Is6()
}

func validScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isAlpha(c):
		case i > 0 && (isDigit(c) || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return s != ""
}

func validPort(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isAlpha(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool { return isDigit(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F' }

func isUnreserved(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '-' || c == '.' || c == '_' || c == '~'
}

// isURIChar accepts unreserved, gen-delims (brackets excluded) and
// sub-delims.
func isURIChar(c byte) bool {
	return isUnreserved(c) || strings.IndexByte(":/?#@!$&'()*+,;=", c) >= 0
}
