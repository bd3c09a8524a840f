package store

const (
	createUser = `INSERT INTO users (email, password_hash)
    VALUES ($1, $2)
    RETURNING user_id, email, password_hash, created_at;`

	findUserByEmail = `SELECT user_id, email, password_hash, created_at
    FROM users
    WHERE email = $1;`

	getProfile = `SELECT last_sync_at
    FROM profiles
    WHERE user_id = $1;`

	setLastSyncAt = `INSERT INTO profiles (user_id, last_sync_at)
    VALUES ($1, $2)
    ON CONFLICT (user_id) DO UPDATE SET last_sync_at = excluded.last_sync_at;`
)
