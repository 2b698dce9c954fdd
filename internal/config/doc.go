// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

// Package config loads the SAR service configuration with koanf.
//
// # Configuration Sources (in order of precedence, lowest to highest)
//
//  1. Built-in defaults (defaultConfig)
//  2. YAML file: SAR_CONFIG_PATH, else config.yaml, config.yml,
//     /etc/sar/config.yaml or /etc/sar/config.yml
//  3. Environment variables with the SAR_ prefix (see envMappings)
//
// Environment variables only cover scalar settings and comma-separated
// lists. Per-column feature similarities are configured in YAML:
//
//	model:
//	  similarity_type: custom
//	  rating_weight: 0.6
//	  features:
//	    - column: genres
//	      similarity: jaccard
//	      weight: 0.7
//	    - column: year
//	      similarity: numeric
//	      max_diff: 20
//	      weight: 0.3
//
// # Validation
//
// Load validates struct tags with the validation package and then runs
// cross-field checks. ModelConfig.Recommend converts the model section into
// a recommend.Config, which applies the model's own validation.
package config
