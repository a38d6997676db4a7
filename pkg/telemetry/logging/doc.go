// Package logging builds the structured slog loggers used across Sluice.
//
// # Overview
//
// The package configures Go's standard log/slog with:
//   - JSON and text output formats
//   - Credential masking for provider endpoint URLs (api-key query
//     parameters and userinfo passwords never reach the log stream)
//   - Context-aware records: request IDs and provider names stored in the
//     context are added to every record automatically
//
// # Usage
//
//	logger, err := logging.Setup(cfg.Telemetry.Logging)
//	if err != nil {
//	    return err
//	}
//
//	ctx = logging.WithRequestID(ctx, id)
//	logger.InfoContext(ctx, "request dispatched",
//	    "url", provider.URL, // api-key parameter masked
//	    "method", method,
//	)
//
// # Credential Masking
//
// Solana RPC providers embed the access credential in the endpoint URL,
// so masking runs on every string attribute:
//
//   - https://mainnet.helius-rpc.com/?api-key=secret123 → ?api-key=***
//   - attributes named url or endpoint get structural URL masking
//   - other strings get a name=value pattern match, catching URLs
//     embedded in error chains
package logging
