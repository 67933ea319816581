/*
 * Copyright 2025 Marek Chromy
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package errors

import "net/http"

const (
	DomainConfig    Domain = "CONFIG"
	DomainServer    Domain = "SERVER"
	DomainCommand   Domain = "CMD"
	DomainHealth    Domain = "HEALTH"
	DomainLifecycle Domain = "LIFECYCLE"
	DomainShares    Domain = "SHARES"
	DomainService   Domain = "SERVICE"
	DomainMisc      Domain = "MISC"
)

// ErrorCode represents unique error identifiers
type ErrorCode int

// Domain represents the subsystem where the error originated
type Domain string

type PanelError struct {
	Code       ErrorCode `json:"code"`
	Domain     Domain    `json:"domain"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	HTTPStatus int       `json:"-"`

	// Metadata carries contextual information that doesn't fit the standard
	// error fields: command lines, exit codes, captured tool output, paths.
	// It is serialized in API responses and flattened into structured logs.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Error code ranges:
// 1000-1099: Configuration errors
// 1100-1199: Server errors
// 1300-1399: Command execution
// 1400-1499: Health check
// 1500-1599: Lifecycle management
// 1600-1699: Miscellaneous
// 1700-1799: Share configuration
// 1800-1899: Mount table (extension file)
// 1900-1999: Samba accounts (extension file)
// 2000-2099: Service control
// 2100-2199: Backup retention (extension file)
const (
	// Configuration Errors (1000-1099)
	ConfigNotFound         = 1000 + iota // Config file not found
	ConfigInvalid                        // Invalid config format
	ConfigLoadFailed                     // Failed to load config
	ConfigWriteFailed                    // Failed to write config
	ConfigPermissionDenied               // Permission denied accessing config
	ConfigDirectoryError                 // Config directory error
	ConfigMarshalFailed                  // Config serialization failed
	ConfigUnmarshalFailed                // Config deserialization failed
	ConfigReadError                      // Error reading config
	ConfigParseError                     // Error parsing config
)

const (
	// Server Errors (1100-1199)
	ServerStart             = 1100 + iota // Failed to start server
	ServerShutdown                        // Error during shutdown
	ServerBind                            // Failed to bind port
	ServerTimeout                         // Operation timeout
	ServerMiddleware                      // Middleware error
	ServerRouting                         // Routing error
	ServerRequestValidation               // Request validation failed
	ServerResponseError                   // Response generation error
	ServerContextCancelled                // Context cancelled
	ServerInternalError                   // Internal server error
	ServerBadRequest                      // Bad request error
	ServerUnknownAction                   // Unknown panel action
)

const (
	// Command Execution (1300-1399)
	CommandNotFound     = 1300 + iota // Command not found
	CommandExecution                  // Execution failed
	CommandTimeout                    // Command timed out
	CommandPermission                 // Permission denied
	CommandInvalidInput               // Invalid command input
	CommandOutputParse                // Output parsing failed
	CommandContext                    // Context handling error
)

const (
	// Health Check (1400-1499)
	HealthCheckFailed   = 1400 + iota // Health check failed
	HealthCheckTimeout                // Health check timed out
	HealthCheckEndpoint               // Endpoint error
	HealthCheckClient                 // Client error
)

const (
	// Lifecycle Management (1500-1599)
	LifecyclePID      = 1500 + iota // PID file operation failed
	LifecycleShutdown               // Shutdown process error
	LifecycleSignal                 // Signal handling error
	LifecycleReload                 // Config reload failed
	LifecycleDaemon                 // Daemon operation failed
)

const (
	// Miscellaneous (1600-1699)
	MiscError = 1600 + iota // Miscellaneous program error
	FSError                 // Filesystem error
	NotFoundError           // Not found error
	LoggerError             // Logger error
)

const (
	// Share Configuration Errors (1700-1799)
	SharesInvalidInput  = 1700 + iota // Invalid share input or parameters
	SharesParseError                  // Failed to parse configuration file
	SharesNotFound                    // Share not found
	SharesAlreadyExists               // Share already exists
	SharesReservedName                // Section name is reserved
	SharesReadError                   // Failed to read configuration file
	SharesWriteError                  // Failed to write configuration file
	SharesBackupFailed                // Failed to back up configuration file
	SharesConfigMissing               // Configuration file not found
	SharesPathInvalid                 // Invalid path for share
)

const (
	// Service Control Errors (2000-2099)
	ServiceRestartFailed = 2000 + iota // Service restart failed
	ServiceStatusFailed                // Service status check failed
	ServiceTestFailed                  // Configuration test failed
	ServiceNotFound                    // Service not found
)

var errorDefinitions = map[ErrorCode]struct {
	message    string
	domain     Domain
	httpStatus int
}{
	// Configuration errors
	ConfigNotFound: {"Configuration file not found", DomainConfig, http.StatusNotFound},
	ConfigInvalid:  {"Invalid configuration format", DomainConfig, http.StatusBadRequest},
	ConfigLoadFailed: {
		"Failed to load configuration",
		DomainConfig,
		http.StatusInternalServerError,
	},
	ConfigWriteFailed: {
		"Failed to write configuration",
		DomainConfig,
		http.StatusInternalServerError,
	},
	ConfigPermissionDenied: {
		"Permission denied accessing config",
		DomainConfig,
		http.StatusForbidden,
	},
	ConfigDirectoryError: {
		"Config directory error",
		DomainConfig,
		http.StatusInternalServerError,
	},
	ConfigMarshalFailed: {
		"Failed to serialize configuration",
		DomainConfig,
		http.StatusInternalServerError,
	},
	ConfigUnmarshalFailed: {
		"Failed to deserialize configuration",
		DomainConfig,
		http.StatusInternalServerError,
	},
	ConfigReadError: {
		"Error reading configuration",
		DomainConfig,
		http.StatusInternalServerError,
	},
	ConfigParseError: {
		"Error parsing configuration",
		DomainConfig,
		http.StatusInternalServerError,
	},

	// Server errors
	ServerStart: {
		"Failed to start server",
		DomainServer,
		http.StatusInternalServerError,
	},
	ServerShutdown: {
		"Error during server shutdown",
		DomainServer,
		http.StatusInternalServerError,
	},
	ServerBind: {
		"Failed to bind server port",
		DomainServer,
		http.StatusInternalServerError,
	},
	ServerTimeout: {
		"Server operation timed out",
		DomainServer,
		http.StatusGatewayTimeout,
	},
	ServerMiddleware: {
		"Middleware execution failed",
		DomainServer,
		http.StatusInternalServerError,
	},
	ServerRouting:           {"Route handling error", DomainServer, http.StatusInternalServerError},
	ServerRequestValidation: {"Request validation failed", DomainServer, http.StatusBadRequest},
	ServerResponseError: {
		"Error generating response",
		DomainServer,
		http.StatusInternalServerError,
	},
	ServerContextCancelled: {
		"Server context cancelled",
		DomainServer,
		http.StatusServiceUnavailable,
	},
	ServerInternalError: {
		"Internal server error",
		DomainServer,
		http.StatusInternalServerError,
	},
	ServerBadRequest: {
		"Bad request error",
		DomainServer,
		http.StatusBadRequest,
	},
	ServerUnknownAction: {
		"Unknown panel action",
		DomainServer,
		http.StatusBadRequest,
	},

	// Command execution errors
	CommandNotFound:  {"Command not found", DomainCommand, http.StatusNotFound},
	CommandExecution: {"Command execution failed", DomainCommand, http.StatusBadRequest},
	CommandTimeout:   {"Command execution timed out", DomainCommand, http.StatusGatewayTimeout},
	CommandPermission: {
		"Permission denied executing command",
		DomainCommand,
		http.StatusForbidden,
	},
	CommandInvalidInput: {"Invalid command input", DomainCommand, http.StatusBadRequest},
	CommandOutputParse: {
		"Failed to parse command output",
		DomainCommand,
		http.StatusInternalServerError,
	},
	CommandContext: {"Command context error", DomainCommand, http.StatusInternalServerError},

	// Health check errors
	HealthCheckFailed:  {"Health check failed", DomainHealth, http.StatusServiceUnavailable},
	HealthCheckTimeout: {"Health check timed out", DomainHealth, http.StatusGatewayTimeout},
	HealthCheckEndpoint: {
		"Health check endpoint error",
		DomainHealth,
		http.StatusServiceUnavailable,
	},
	HealthCheckClient: {
		"Health check client error",
		DomainHealth,
		http.StatusInternalServerError,
	},

	// Lifecycle errors
	LifecyclePID: {
		"PID file operation failed",
		DomainLifecycle,
		http.StatusInternalServerError,
	},
	LifecycleShutdown: {
		"Error during shutdown process",
		DomainLifecycle,
		http.StatusInternalServerError,
	},
	LifecycleSignal: {"Signal handling error", DomainLifecycle, http.StatusInternalServerError},
	LifecycleReload: {
		"Configuration reload failed",
		DomainLifecycle,
		http.StatusInternalServerError,
	},
	LifecycleDaemon: {"Daemon operation failed", DomainLifecycle, http.StatusInternalServerError},

	// Miscellaneous errors
	MiscError:     {"Miscellaneous program error", DomainMisc, http.StatusInternalServerError},
	FSError:       {"Filesystem error", DomainMisc, http.StatusInternalServerError},
	NotFoundError: {"Not found", DomainMisc, http.StatusNotFound},
	LoggerError: {
		"Logger error",
		DomainMisc,
		http.StatusInternalServerError,
	},

	// Share configuration errors
	SharesInvalidInput: {
		"Invalid share input or parameters",
		DomainShares,
		http.StatusBadRequest,
	},
	SharesParseError: {
		"Failed to parse configuration file",
		DomainShares,
		http.StatusInternalServerError,
	},
	SharesNotFound: {
		"Share not found",
		DomainShares,
		http.StatusNotFound,
	},
	SharesAlreadyExists: {
		"Share already exists",
		DomainShares,
		http.StatusConflict,
	},
	SharesReservedName: {
		"Section name is reserved",
		DomainShares,
		http.StatusBadRequest,
	},
	SharesReadError: {
		"Failed to read configuration file",
		DomainShares,
		http.StatusInternalServerError,
	},
	SharesWriteError: {
		"Failed to write configuration file",
		DomainShares,
		http.StatusInternalServerError,
	},
	SharesBackupFailed: {
		"Failed to back up configuration file",
		DomainShares,
		http.StatusInternalServerError,
	},
	SharesConfigMissing: {
		"Configuration file not found",
		DomainShares,
		http.StatusNotFound,
	},
	SharesPathInvalid: {
		"Invalid path for share",
		DomainShares,
		http.StatusBadRequest,
	},

	// Service control errors
	ServiceRestartFailed: {
		"Service restart failed",
		DomainService,
		http.StatusInternalServerError,
	},
	ServiceStatusFailed: {
		"Service status check failed",
		DomainService,
		http.StatusInternalServerError,
	},
	ServiceTestFailed: {
		"Configuration test failed",
		DomainService,
		http.StatusInternalServerError,
	},
	ServiceNotFound: {
		"Service not found",
		DomainService,
		http.StatusNotFound,
	},
}
