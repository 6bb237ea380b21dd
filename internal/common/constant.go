package common

// AccessTokenHeaderName is the HTTP header used to carry the access token
// on inbound requests when the Authorization bearer form is not used
// (e.g. WebSocket upgrades from browsers).
const AccessTokenHeaderName = "access_token"
