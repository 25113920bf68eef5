// Package mediator serves the forwarding endpoint used by rest.WithMediator.
//
// Clients POST a rest.RequestEnvelope to "/". The handler rebuilds the
// request, replays it against the configured Jira with its own credentials
// and answers 200 with a rest.ResponseEnvelope. Upstream failures and
// undecodable envelopes are reported with requestSuccessful=false.
package mediator
