package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// VerificationPathPrefix is the public path under which verification codes
// are looked up over HTTP.
const VerificationPathPrefix = "/verificar-documento"
