package apiserver

import (
	"context"

	"github.com/SocialSim/socialsim/cnf"
	"github.com/SocialSim/socialsim/eval"
	"github.com/SocialSim/socialsim/events"
	"github.com/gin-gonic/gin"
)

type service interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
}

// ------

type measurementInfo struct {
	Name        eval.MeasurementName `json:"name"`
	Question    string               `json:"question"`
	Query       string               `json:"query"`
	Quantify    string               `json:"quantify"`
	Phenomena   string               `json:"phenomena"`
	Scale       eval.Scale           `json:"scale"`
	NodeType    eval.NodeType        `json:"nodeType"`
	Filters     events.Filter        `json:"filters,omitempty"`
	Measurement string               `json:"measurement"`
	Metrics     map[string]string    `json:"metrics"`
}

func newMeasurementInfo(desc eval.Descriptor) measurementInfo {
	ans := measurementInfo{
		Name:        desc.Name,
		Question:    desc.Question,
		Query:       desc.Query,
		Quantify:    desc.Quantify,
		Phenomena:   desc.Phenomena,
		Scale:       desc.Scale,
		NodeType:    desc.NodeType,
		Filters:     desc.Filters,
		Measurement: desc.Measurement.Name(),
		Metrics:     make(map[string]string, len(desc.Metrics)),
	}
	for _, m := range desc.Metrics {
		ans.Metrics[m.Name] = m.Metric.Name()
	}
	return ans
}

type evaluation struct {
	RunID    string         `json:"runId,omitempty"`
	Results  any            `json:"results"`
	Failures []eval.Failure `json:"failures"`
}

// -----

func corsMiddleware(conf *cnf.Conf) gin.HandlerFunc {
	return func(ctx *gin.Context) {

		var allowedOrigin string
		currOrigin := ctx.Request.Header.Get("Origin")
		for _, origin := range conf.CorsAllowedOrigins {
			if currOrigin == origin || origin == "*" {
				allowedOrigin = origin
				break
			}
		}
		if allowedOrigin != "" {
			ctx.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			ctx.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			ctx.Writer.Header().Set(
				"Access-Control-Allow-Headers",
				"Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With",
			)
			ctx.Writer.Header().Set("Access-Control-Allow-Methods", "OPTIONS, GET")
		}

		if ctx.Request.Method == "OPTIONS" {
			ctx.AbortWithStatus(204)
			return
		}
		ctx.Next()
	}
}
