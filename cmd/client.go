package main

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/schema"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type clientOpts struct {
	Debug        bool   `schema:"debug"`         // include the backend query in search responses
	Verbose      bool   `schema:"verbose"`       // log full backend request urls
	OriginalSort string `schema:"original_sort"` // sort label to report back in place of the translated one
}

type clientContext struct {
	reqID  string       // internally generated
	start  time.Time    // internally set
	opts   clientOpts   // options set by client
	ginCtx *gin.Context // gin context
}

var optsDecoder = newOptsDecoder()

func newOptsDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

func (c *clientContext) init(ctx *gin.Context) {
	c.ginCtx = ctx

	c.start = time.Now()
	c.reqID = fmt.Sprintf("%08x", rand.Uint32())

	// malformed options are ignored, just like malformed search parameters
	if err := optsDecoder.Decode(&c.opts, ctx.Request.URL.Query()); err != nil {
		c.log("ignoring client options: %s", err.Error())
	}
}

func (c *clientContext) logRequest() {
	query := ""
	if c.ginCtx.Request.URL.RawQuery != "" {
		query = fmt.Sprintf("?%s", c.ginCtx.Request.URL.RawQuery)
	}

	c.log("[REQUEST] %s %s%s", c.ginCtx.Request.Method, c.ginCtx.Request.URL.Path, query)
}

func (c *clientContext) logResponse(resp serviceResponse) {
	msg := fmt.Sprintf("[RESPONSE] status: %d, elapsed: %d (ms)", resp.status, int64(time.Since(c.start)/time.Millisecond))

	if resp.err != nil {
		msg = msg + fmt.Sprintf(", error: %s", resp.err.Error())
	}

	c.log("%s", msg)
}

func (c *clientContext) printf(lvl zapcore.Level, prefix, format string, args ...interface{}) {
	str := fmt.Sprintf(format, args...)

	if prefix != "" {
		str = strings.Join([]string{prefix, str}, " ")
	}

	zap.S().Logf(lvl, "[%s] %s", c.reqID, str)
}

func (c *clientContext) log(format string, args ...interface{}) {
	c.printf(zapcore.InfoLevel, "", format, args...)
}

func (c *clientContext) err(format string, args ...interface{}) {
	c.printf(zapcore.ErrorLevel, "ERROR:", format, args...)
}
