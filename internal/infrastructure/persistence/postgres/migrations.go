package postgres

// GetMigrations returns all embedded migrations in order.
func GetMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_courses", UpSQL: migration001Up, DownSQL: migration001Down},
		{Version: 2, Name: "create_course_progress", UpSQL: migration002Up, DownSQL: migration002Down},
		{Version: 3, Name: "create_payment_distributions", UpSQL: migration003Up, DownSQL: migration003Down},
		{Version: 4, Name: "create_installments", UpSQL: migration004Up, DownSQL: migration004Down},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: COURSES
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE IF NOT EXISTS courses (
    id TEXT PRIMARY KEY,
    mentor_id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    price NUMERIC NOT NULL,
    duration_text TEXT NOT NULL DEFAULT '',
    course_category VARCHAR(20) NOT NULL,

    -- Both NULL when the course uses the platform default split.
    commission_platform NUMERIC,
    commission_mentor NUMERIC,

    vacancy_id TEXT,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_category CHECK (course_category IN ('crash', 'skill-focused', 'bootcamp', 'bundle')),
    CONSTRAINT valid_price CHECK (price >= 0),
    CONSTRAINT commission_both_or_neither CHECK ((commission_platform IS NULL) = (commission_mentor IS NULL)),
    CONSTRAINT commission_sums_to_100 CHECK (commission_platform IS NULL OR commission_platform + commission_mentor = 100)
);

CREATE INDEX IF NOT EXISTS idx_courses_mentor ON courses(mentor_id, created_at);
`

const migration001Down = `
DROP TABLE IF EXISTS courses;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: COURSE PROGRESS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE TABLE IF NOT EXISTS course_progress (
    course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
    student_id TEXT NOT NULL,
    progress_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
    certificate_issued BOOLEAN NOT NULL DEFAULT FALSE,
    certificate_id TEXT,
    certificate_url TEXT,
    certificate_issued_at TIMESTAMP WITH TIME ZONE,
    mentor_signed BOOLEAN NOT NULL DEFAULT FALSE,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (course_id, student_id),
    CONSTRAINT valid_percentage CHECK (progress_percentage >= 0 AND progress_percentage <= 100),
    CONSTRAINT issued_has_certificate CHECK (
        NOT certificate_issued OR (certificate_id IS NOT NULL AND certificate_issued_at IS NOT NULL)
    )
);

CREATE INDEX IF NOT EXISTS idx_course_progress_student ON course_progress(student_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_course_progress_certificate ON course_progress(certificate_id) WHERE certificate_id IS NOT NULL;
`

const migration002Down = `
DROP TABLE IF EXISTS course_progress;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: PAYMENT DISTRIBUTIONS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
CREATE TABLE IF NOT EXISTS payment_distributions (
    id TEXT PRIMARY KEY,
    course_id TEXT NOT NULL REFERENCES courses(id),
    mentor_id TEXT NOT NULL,
    student_id TEXT NOT NULL,
    amount NUMERIC NOT NULL,
    commission_platform NUMERIC NOT NULL,
    commission_mentor NUMERIC NOT NULL,
    platform_cut NUMERIC NOT NULL,
    mentor_cut NUMERIC NOT NULL,
    payment_method VARCHAR(20) NOT NULL,
    installment_number INTEGER,
    total_installments INTEGER,
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    distributed_at TIMESTAMP WITH TIME ZONE,

    CONSTRAINT valid_amount CHECK (amount > 0),
    CONSTRAINT valid_cuts CHECK (platform_cut >= 0 AND mentor_cut >= 0),
    CONSTRAINT valid_method CHECK (payment_method IN ('full', 'installment')),
    CONSTRAINT valid_status CHECK (status IN ('pending', 'processing', 'completed', 'failed')),
    CONSTRAINT installment_numbering CHECK (
        (payment_method = 'full' AND installment_number IS NULL AND total_installments IS NULL) OR
        (payment_method = 'installment' AND installment_number BETWEEN 1 AND total_installments)
    )
);

CREATE INDEX IF NOT EXISTS idx_distributions_mentor ON payment_distributions(mentor_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_distributions_in_flight ON payment_distributions(status) WHERE status IN ('pending', 'processing');
`

const migration003Down = `
DROP TABLE IF EXISTS payment_distributions;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: INSTALLMENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
CREATE TABLE IF NOT EXISTS installments (
    id TEXT PRIMARY KEY,
    course_id TEXT NOT NULL REFERENCES courses(id),
    student_id TEXT NOT NULL,
    mentor_id TEXT NOT NULL,
    installment_number INTEGER NOT NULL,
    total_installments INTEGER NOT NULL,
    amount NUMERIC NOT NULL,
    due_date TIMESTAMP WITH TIME ZONE NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'scheduled',
    reminded_at TIMESTAMP WITH TIME ZONE,
    paid_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT unique_installment UNIQUE (course_id, student_id, installment_number),
    CONSTRAINT valid_number CHECK (installment_number BETWEEN 1 AND total_installments),
    CONSTRAINT valid_installment_status CHECK (status IN ('scheduled', 'paid'))
);

CREATE INDEX IF NOT EXISTS idx_installments_reminder ON installments(due_date)
    WHERE status = 'scheduled' AND reminded_at IS NULL;
`

const migration004Down = `
DROP TABLE IF EXISTS installments;
`
