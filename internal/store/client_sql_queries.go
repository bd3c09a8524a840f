// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keenan Husselmann

package store

const (
	getStateValue = `
		SELECT value
		FROM state_kv
		WHERE key = $1;`

	setStateValue = `
		INSERT INTO state_kv (key, value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET
			value      = excluded.value,
			updated_at = CURRENT_TIMESTAMP;`

	deleteStateValue = `
		DELETE FROM state_kv
		WHERE key = $1;`
)
