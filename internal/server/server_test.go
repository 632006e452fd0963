package server_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kubev2v/executor-agent/internal/config"
	"github.com/kubev2v/executor-agent/internal/server"
)

var _ = Describe("Server", func() {
	var srv *server.Server

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	BeforeEach(func() {
		reg := prometheus.NewRegistry()
		counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "test"})
		reg.MustRegister(counter)
		counter.Inc()

		srv = server.NewServer(config.NewConfigurationWithDefaults(), reg, func(router *gin.RouterGroup) {
			router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
			router.GET("/panic", func(c *gin.Context) { panic("boom") })
		})
	})

	It("should mount handlers under /api/v1", func() {
		w := get("/api/v1/ping")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(Equal("pong"))
	})

	It("should expose metrics", func() {
		w := get("/metrics")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("test_total 1"))
	})

	It("should recover from handler panics", func() {
		w := get("/api/v1/panic")

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})

	It("should answer unknown routes with JSON", func() {
		w := get("/nowhere")

		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(w.Body.String()).To(MatchJSON(`{"error":"not found"}`))
	})

	It("should report health", func() {
		Expect(get("/health").Code).To(Equal(http.StatusOK))
	})
})
