// A very simple gin HTTP server for watching a long solve from outside
// the process. The solver publishes progress snapshots on a stream; the
// server keeps the latest one and reports it, together with the model
// statistics, as JSON.
package gui

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/streamopt/cacheplan/internal/config"
	"github.com/streamopt/cacheplan/internal/model"
	"github.com/streamopt/cacheplan/internal/solver"
	"github.com/streamopt/cacheplan/statistics"
)

var (
	router *gin.Engine

	mutex     sync.Mutex
	latest    solver.Progress
	placement model.Placement
	done      bool
)

func registerRoutes() {
	router.GET("/status", func(ctx *gin.Context) {
		mutex.Lock()
		defer mutex.Unlock()

		ctx.JSON(http.StatusOK, gin.H{
			"progress":   latest,
			"done":       done,
			"statistics": statistics.Snapshot(),
		})
	})

	router.GET("/placement", func(ctx *gin.Context) {
		mutex.Lock()
		defer mutex.Unlock()

		if !done {
			ctx.JSON(http.StatusOK, gin.H{"done": false})
			return
		}

		ctx.JSON(http.StatusOK, gin.H{
			"done":    true,
			"content": placement.Display(),
		})
	})
}

// SetUp wires the server to a solver progress stream and starts
// consuming it.
func SetUp(progressStream <-chan solver.Progress) {
	go func() {
		for progress := range progressStream {
			mutex.Lock()
			latest = progress
			mutex.Unlock()
		}
	}()

	router = gin.Default()
	router.Use(cors.Default())

	registerRoutes()
}

// Publish records the final placement for the /placement route.
func Publish(p model.Placement) {
	mutex.Lock()
	defer mutex.Unlock()

	placement = p
	done = true
}

func Run() {
	router.Run(fmt.Sprintf(":%d", config.PlannerGeneralConfig.GuiPort))
}
