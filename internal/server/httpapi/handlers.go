package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/docverify/internal/verification"
	"github.com/gin-gonic/gin"
)

func (s *HTTPServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "up"})
}

// handleLookup answers 200 for every well-formed request. Unknown and
// malformed codes are reported as unverified.
func (s *HTTPServer) handleLookup(c *gin.Context) {
	res, err := s.lookup.Lookup(c.Request.Context(), c.Param("code"))
	if err != nil {
		s.logger.Error(c.Request.Context(), "lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *HTTPServer) handleQR(c *gin.Context) {
	code := c.Param("code")
	if !verification.ValidCode(code) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed verification code"})
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/svg+xml", []byte(s.qr.RenderQRSVG(code)))
}
