package cmd

const (
	RootCmdName  = "carval"
	RootCmdShort = "Vehicle valuation API"
	RootCmdLong  = `carval serves Black Book valuations, per-province pricing cards,
NHTSA VIN decoding and comparable market listings over a JSON HTTP API.`

	ServeCmdName  = "serve"
	ServeCmdShort = "Start the HTTP API server"
	ServeCmdLong  = `Start the HTTP API server.

Configuration is read from .env, an optional config.yaml (./configs or .)
and the environment, e.g. BLACKBOOK_ID, BLACKBOOK_PASSWORD and
BLACKBOOK_GRAPHQL_URL. Flags override both.`
)
