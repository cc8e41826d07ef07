// Package postgres implements PostgreSQL persistence layer for CyberMatch Hub.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE PROFILES
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create profile tables
-- Version: 001
-- Purpose: Seeker and candidate snapshots the matching engine reads

-- Seekers: people looking for a mentor
CREATE TABLE IF NOT EXISTS seekers (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    display_name VARCHAR(100) NOT NULL,
    desired_skills TEXT[] NOT NULL DEFAULT '{}',
    target_roles TEXT[] NOT NULL DEFAULT '{}',
    experience_level SMALLINT NOT NULL DEFAULT 1,
    location VARCHAR(100) NOT NULL DEFAULT '',
    learning_goal TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_seeker_experience CHECK (experience_level BETWEEN 1 AND 3)
);

CREATE INDEX IF NOT EXISTS idx_seekers_location ON seekers(location) WHERE location != '';

-- Candidates: mentors the engine ranks
CREATE TABLE IF NOT EXISTS candidates (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    display_name VARCHAR(100) NOT NULL,
    skills TEXT[] NOT NULL DEFAULT '{}',
    roles TEXT[] NOT NULL DEFAULT '{}',
    experience_level SMALLINT NOT NULL DEFAULT 1,
    location VARCHAR(100) NOT NULL DEFAULT '',
    hourly_rate DECIMAL(8,2) NOT NULL DEFAULT 0,
    weekly_hours INTEGER NOT NULL DEFAULT 0,
    verified BOOLEAN NOT NULL DEFAULT FALSE,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_candidate_experience CHECK (experience_level BETWEEN 1 AND 3),
    CONSTRAINT valid_hourly_rate CHECK (hourly_rate >= 0),
    CONSTRAINT valid_weekly_hours CHECK (weekly_hours >= 0)
);

-- The ranking input is always "verified AND active"; index exactly that slice
CREATE INDEX IF NOT EXISTS idx_candidates_eligible ON candidates(id) WHERE verified AND active;
CREATE INDEX IF NOT EXISTS idx_candidates_location ON candidates(location) WHERE location != '';
CREATE INDEX IF NOT EXISTS idx_candidates_display_name ON candidates(LOWER(display_name));

-- Updated_at trigger function for automatic timestamp updates
CREATE OR REPLACE FUNCTION update_updated_at_column()
RETURNS TRIGGER AS $$
BEGIN
    NEW.updated_at = NOW();
    RETURN NEW;
END;
$$ language 'plpgsql';

DROP TRIGGER IF EXISTS update_seekers_updated_at ON seekers;
CREATE TRIGGER update_seekers_updated_at
    BEFORE UPDATE ON seekers
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();

DROP TRIGGER IF EXISTS update_candidates_updated_at ON candidates;
CREATE TRIGGER update_candidates_updated_at
    BEFORE UPDATE ON candidates
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`

const migration001Down = `
DROP TRIGGER IF EXISTS update_candidates_updated_at ON candidates;
DROP TRIGGER IF EXISTS update_seekers_updated_at ON seekers;
DROP FUNCTION IF EXISTS update_updated_at_column();
DROP TABLE IF EXISTS candidates;
DROP TABLE IF EXISTS seekers;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE MENTORSHIP REQUESTS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create mentorship request table
-- Version: 002
-- Purpose: The pending → accepted/declined workflow between a pair

CREATE TABLE IF NOT EXISTS mentorship_requests (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    seeker_id UUID NOT NULL REFERENCES seekers(id) ON DELETE CASCADE,
    candidate_id UUID NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    responded_at TIMESTAMP WITH TIME ZONE,

    CONSTRAINT valid_request_status CHECK (status IN ('pending', 'accepted', 'declined')),
    CONSTRAINT different_parties CHECK (seeker_id != candidate_id)
);

-- At most one open request per pair; answered requests do not count
CREATE UNIQUE INDEX IF NOT EXISTS uq_requests_open_pair
    ON mentorship_requests(seeker_id, candidate_id) WHERE status = 'pending';

CREATE INDEX IF NOT EXISTS idx_requests_seeker ON mentorship_requests(seeker_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_requests_candidate ON mentorship_requests(candidate_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_requests_candidate_pending
    ON mentorship_requests(candidate_id) WHERE status = 'pending';
`

const migration002Down = `
DROP TABLE IF EXISTS mentorship_requests;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE BLOCKS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create block table
-- Version: 003
-- Purpose: Directed block rows; the gate reads them symmetrically

CREATE TABLE IF NOT EXISTS blocks (
    blocker_id UUID NOT NULL,
    blocked_id UUID NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (blocker_id, blocked_id),
    CONSTRAINT no_self_block CHECK (blocker_id != blocked_id)
);

-- Symmetric existence checks probe both directions
CREATE INDEX IF NOT EXISTS idx_blocks_blocked ON blocks(blocked_id);
`

const migration003Down = `
DROP TABLE IF EXISTS blocks;
`
