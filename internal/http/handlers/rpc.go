package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"todo_app/internal/domain"
	"todo_app/internal/logger"
	"todo_app/internal/rpc"

	"github.com/gin-gonic/gin"
)

const maxBodyBytes = 64 << 10

// RPCHandler serves the procedure registry over HTTP.
//
//	GET  /api/v1/rpc/:procedure?input=<json>   queries only
//	POST /api/v1/rpc/:procedure                body is the input
type RPCHandler struct {
	Registry *rpc.Registry
}

func NewRPCHandler(registry *rpc.Registry) *RPCHandler {
	return &RPCHandler{Registry: registry}
}

// Get calls a query procedure with the input query parameter.
func (h *RPCHandler) Get(c *gin.Context) {
	name := c.Param("procedure")
	p, ok := h.Registry.Lookup(name)
	if ok && p.Kind != rpc.KindQuery {
		c.Header("Allow", http.MethodPost)
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": name + " is a mutation; use POST"})
		return
	}

	var input json.RawMessage
	if v := c.Query("input"); v != "" {
		input = json.RawMessage(v)
	}
	h.call(c, name, input)
}

// Post calls any procedure with the request body as input.
func (h *RPCHandler) Post(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return
	}
	h.call(c, c.Param("procedure"), body)
}

func (h *RPCHandler) call(c *gin.Context, name string, input json.RawMessage) {
	ctx := c.Request.Context()

	out, err := h.Registry.Call(ctx, "http", name, input)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			logger.WithContext(ctx).Error("rpc call failed", "procedure", name, "error", err)
		}
		c.JSON(status, gin.H{"error": rpc.PublicMessage(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": out})
}

// Procedures lists the registered procedure names and kinds.
func (h *RPCHandler) Procedures(c *gin.Context) {
	names := h.Registry.Names()
	out := make([]gin.H, 0, len(names))
	for _, n := range names {
		p, _ := h.Registry.Lookup(n)
		out = append(out, gin.H{"name": p.Name, "kind": p.Kind})
	}
	c.JSON(http.StatusOK, gin.H{"procedures": out})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, rpc.ErrUnknownProcedure), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, rpc.ErrBadInput), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
