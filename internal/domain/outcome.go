package domain

import "net/http"

// OutcomeKind tags what the HTTP layer should do with an Outcome.
type OutcomeKind int

const (
	OutcomeRedirect OutcomeKind = iota + 1
	OutcomeRender
	OutcomeClientError
	OutcomeServerError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeRedirect:
		return "redirect"
	case OutcomeRender:
		return "render"
	case OutcomeClientError:
		return "client_error"
	case OutcomeServerError:
		return "server_error"
	default:
		return "unknown"
	}
}

// Outcome is the result of one flow step. Only the fields relevant to Kind are set.
type Outcome struct {
	Kind     OutcomeKind
	Location string
	View     string
	Data     any
	Status   int
	Body     string
}

// Fixed response bodies.
const (
	BodyInvalidShop      = "Invalid shop parameter (not a myshopify subdomain)"
	BodyInvalidSignature = "This request is not from Shopify!"
	BodyTokenExchange    = "There was an error obtaining the access token"
	BodyInternal         = "Internal server error"
)

func Redirect(location string) Outcome {
	return Outcome{Kind: OutcomeRedirect, Location: location, Status: http.StatusFound}
}

func Render(view string, data any) Outcome {
	return Outcome{Kind: OutcomeRender, View: view, Data: data, Status: http.StatusOK}
}

func ClientError(status int, body string) Outcome {
	return Outcome{Kind: OutcomeClientError, Status: status, Body: body}
}

func ServerError(status int, body string) Outcome {
	return Outcome{Kind: OutcomeServerError, Status: status, Body: body}
}
