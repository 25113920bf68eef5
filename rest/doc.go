// Package rest executes calls against the Jira REST API and normalizes the
// outcome into JSON or a typed error.
//
// # Architecture
//
// The package is organized into several components:
//
//   - Transport: one HTTP round trip relative to a base URL, with per-call authenticator
//   - Classify: maps a raw Response to JSON or an *Error
//   - DirectExecutor: calls Jira directly, optionally retrying once after a 401
//   - MediatedExecutor: wraps every call in a RequestEnvelope posted to a forwarding proxy
//   - Client: the facade used by domain services
//
// # Usage
//
//	logger := zerolog.New(os.Stdout)
//	client, err := rest.NewClient(
//		"https://jira.example.com",
//		logger,
//		rest.WithBasicAuth("user", "token"),
//		rest.WithTimeout(30*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	projects, err := rest.ExecuteRequestAs[[]jira.Project](ctx, client, rest.MethodGet, "rest/api/2/project", nil)
//
// To tunnel calls through a forwarding proxy instead:
//
//	client, err := rest.NewClient(jiraURL, logger, rest.WithMediator("https://proxy.internal"))
//
// # Error Handling
//
// Every failure from the pipeline is an *Error whose Kind selects the branch:
//
//   - KindAuthenticationFailed: 401 or 403
//   - KindResourceNotFound: 404
//   - KindRequestFailed: any other status >= 400
//   - KindMalformedResponse: body is not valid JSON
//   - KindServerReportedError: JSON object carrying errorMessages
//   - KindTransportFailure: the call never completed
//   - KindContractViolation: rejected locally, e.g. GET with a body
//
// Sentinels match by kind:
//
//	if errors.Is(err, rest.ErrNotFound) {
//		// Handle missing resource
//	}
//
// Cancellation is not classified; the returned error wraps ctx.Err().
package rest
