package keyenv

// Version is the client library version reported in the User-Agent header.
const Version = "0.3.0"
