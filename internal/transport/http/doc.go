// Package http implements the HTTP presenter of scorecli. Handlers are thin:
// they parse path and query parameters, call the analysis service and render
// JSON. Every error goes through errors.ErrorHandler so clients always get
// RFC 7807 problem details.
//
// # Routes
//
//	GET    /api/analytics/status                    dataset status
//	GET    /api/analytics/sources                   score files in the data directory
//	GET    /api/analytics/report                    every query in one document
//	GET    /api/analytics/failed                    students with a failing score
//	GET    /api/analytics/semesters                 semester by subject averages
//	GET    /api/analytics/semesters/overview        per semester averages
//	GET    /api/analytics/subjects                  per subject averages
//	GET    /api/analytics/subjects/{subject}        one subject average
//	GET    /api/analytics/subjects/{subject}/scores one subject's scores
//	GET    /api/analytics/top                       highest average students
//	GET    /api/analytics/lowest                    weakest subject
//	GET    /api/analytics/improved                  improving students
//	GET    /api/analytics/students/{student}/trend  one student's trend
//	POST   /api/analytics/reload                    reload or replace the dataset
//	POST   /api/analytics/export?format=csv|xlsx    write the averages table
//	GET    /api/analytics/runs                      stored runs
//	POST   /api/analytics/runs                      store the averages table
//	GET    /api/analytics/runs/{id}                 one stored run
//	DELETE /api/analytics/runs/{id}                 remove a stored run
//	GET    /api/health[/ready|/live|/detail]        health checks
//	GET    /api/version                             build information
//	GET    /metrics                                 Prometheus metrics
//
// List responses use the envelope {"status":"success","data":...,"count":n}.
package http
