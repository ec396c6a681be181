// Package server ties the cube store, the staged generator and the scheduler that drives it together into a
// single world that generates itself around a moving load centre.
package server

import (
	"context"
	"errors"

	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/world"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen"
	"github.com/tallworlds/cubicgen/server/world/pipeline"
)

// Server generates the cubes of a single world. A Server is created by calling Config.New.
type Server struct {
	conf Config

	store   *world.Store
	gen     *cubegen.Generator
	sched   *pipeline.Scheduler
	loader  *pipeline.Loader
	metrics *pipeline.Metrics
}

// Store returns the store holding the cubes of the world.
func (srv *Server) Store() *world.Store {
	return srv.store
}

// Generator returns the generator that advances cubes through the generation stages.
func (srv *Server) Generator() *cubegen.Generator {
	return srv.gen
}

// Scheduler ...
func (srv *Server) Scheduler() *pipeline.Scheduler {
	return srv.sched
}

// Move moves the load centre of the world to the cube passed. Cubes around the centre are generated by Run.
func (srv *Server) Move(centre cube.CubePos) {
	n := srv.loader.Move(centre)
	srv.conf.Log.Info("Load centre moved.", "centre", centre, "requested", n)
}

// Run generates requested cubes until ctx is cancelled. Run returns nil if it stopped because ctx was
// cancelled.
func (srv *Server) Run(ctx context.Context) error {
	srv.conf.Log.Info("Starting generation...", "seed", srv.conf.Seed, "workers", srv.conf.Pipeline.Workers)
	err := srv.sched.Run(ctx)
	srv.conf.Log.Info("Generation stopped.", "cubes", srv.store.Len(), "pending", srv.sched.Pending())
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
