// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

/*
Package services adapts SAR components to suture's Serve(ctx) error pattern.

HTTPServerService wraps an *http.Server: ListenAndServe runs in a goroutine
and context cancellation drains it with a bounded Shutdown. A listen failure
is returned for the supervisor to retry; a server closed from outside the
tree ends the service with suture.ErrDoNotRestart.

TrainService fits a model through a Trainer and hands it to a Publisher
(the API handler). With a refresh interval it keeps refitting on a ticker;
a failed refit is logged and the previous model keeps serving. Without one it
returns suture.ErrDoNotRestart after the first successful fit.
*/
package services
