package v1

import (
	"net/http"
	"strconv"

	"pesagate/api/internal/domain"

	"github.com/gin-gonic/gin"
)

const branchCtxKey = "branch_id"

func (h *Handler) adminAccessMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.config.PrivateKey != c.Request.Header.Get("Access") {
			responseErr(c, http.StatusUnauthorized, "access denied", "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// branchMiddleware resolves the operator's selected branch. Settings routes
// are meaningless without one, so its absence is a 400 precondition failure.
func (h *Handler) branchMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Request.Header.Get("X-Branch-ID")
		if raw == "" {
			responseErr(c, http.StatusBadRequest, domain.ErrMsgNoBranchSelected, "")
			c.Abort()
			return
		}

		branchID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || branchID == 0 {
			responseErr(c, http.StatusBadRequest, domain.ErrMsgNoBranchSelected, "")
			c.Abort()
			return
		}

		c.Set(branchCtxKey, uint(branchID))
		c.Next()
	}
}

func branchFromCtx(c *gin.Context) uint {
	v, ok := c.Get(branchCtxKey)
	if !ok {
		return 0
	}
	branchID, ok := v.(uint)
	if !ok {
		return 0
	}
	return branchID
}
