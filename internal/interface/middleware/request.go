package middleware

import (
	"net"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID carries the request id in both directions.
	HeaderRequestID = "X-Request-ID"

	ctxRequestID = "request_id"
	ctxRealIP    = "real_ip"
)

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID stores a request id in the context and echoes it in the response.
// A well-formed incoming X-Request-ID is kept so ids correlate across proxies.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if !requestIDPattern.MatchString(id) {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RealIP stores the client IP in the context under "real_ip".
// CF-Connecting-IP and the left-most X-Forwarded-For entry are honored only
// when the direct peer is a trusted proxy: one of the given CIDRs or bare IPs,
// or any loopback or private address when none are given.
func RealIP(trusted ...string) gin.HandlerFunc {
	nets := parseTrusted(trusted)
	return func(c *gin.Context) {
		ip := peerIP(c)
		if isTrusted(ip, nets) {
			if fwd := forwardedIP(c); fwd != "" {
				c.Set(ctxRealIP, fwd)
				c.Next()
				return
			}
		}
		if ip != nil {
			c.Set(ctxRealIP, ip.String())
		} else {
			c.Set(ctxRealIP, c.ClientIP())
		}
		c.Next()
	}
}

func forwardedIP(c *gin.Context) string {
	if ip := net.ParseIP(strings.TrimSpace(c.GetHeader("CF-Connecting-IP"))); ip != nil {
		return ip.String()
	}
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	return ""
}

func peerIP(c *gin.Context) net.IP {
	host, _, err := net.SplitHostPort(strings.TrimSpace(c.Request.RemoteAddr))
	if err != nil {
		host = c.Request.RemoteAddr
	}
	return net.ParseIP(host)
}

func parseTrusted(list []string) []*net.IPNet {
	out := make([]*net.IPNet, 0, len(list))
	for _, s := range list {
		s = strings.TrimSpace(s)
		if !strings.Contains(s, "/") {
			if ip := net.ParseIP(s); ip != nil {
				bits := 8 * len(ip.To16())
				if ip.To4() != nil {
					ip, bits = ip.To4(), 32
				}
				out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			}
			continue
		}
		if _, n, err := net.ParseCIDR(s); err == nil {
			out = append(out, n)
		}
	}
	return out
}

func isTrusted(ip net.IP, nets []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	if len(nets) == 0 {
		return ip.IsLoopback() || ip.IsPrivate()
	}
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
