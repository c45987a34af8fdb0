// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package catalog provides the remote application catalog and its HTTP client.

# Document format

The catalog endpoint serves a single JSON object:

	{
	  "apps": [
	    {
	      "fullAppName": "Visual Studio Code",
	      "shortAppName": "VS Code",
	      "setup": {
	        "windows": {"setupFilename": "code.exe", "setupUrl": "https://...", "setupCommand": ["ia/code.exe", "/VERYSILENT"]},
	        "linux":   {"setupFilename": "noSetupFile", "setupCommand": ["sudo", "snap", "install", "code", "--classic"]}
	      },
	      "configurations": [
	        {"fullConfigName": "C++ development", "shortConfigName": "C++",
	         "configureScriptFilename": "cppcompvscode.py", "configureScriptUrl": "https://..."}
	      ]
	    }
	  ]
	}

A setupFilename of "noSetupFile" means the setup command runs without a
download. Menu choices are 1-based; configuration choice 0 means none.

# Errors

Every failure of FetchCatalog or FetchMessages is a *ClientError that matches
ErrCatalogUnavailable or ErrMessagesUnavailable with errors.Is. Transport
errors, non-2xx responses, malformed JSON and (for FetchValidCatalog) schema
violations are not distinguished by callers.
*/
package catalog
