// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

/*
Package supervisor runs the long-lived services of the SAR server under a
suture v4 supervisor tree.

# Overview

Services are split into two layers so a failing fit does not take the HTTP
server down with it:

	RootSupervisor ("sar")
	├── ModelSupervisor ("model-layer")
	│   └── TrainService (load tables, fit, publish the model)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

The API layer starts immediately and answers 503 MODEL_NOT_READY until the
first fit is published. A training failure is returned to suture, which
restarts the service with backoff.

Supervisor events (service start, failure, backoff) are logged through
sutureslog, fed by the zerolog slog bridge in internal/logging.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddModelService(services.NewTrainService(trainer, handler, services.TrainServiceConfig{}, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, services.HTTPServiceConfig{Addr: server.Addr}, logger))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}
*/
package supervisor
