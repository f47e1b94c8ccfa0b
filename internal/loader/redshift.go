package loader

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dbd-project/dbd/internal/dbschema"
	"github.com/dbd-project/dbd/internal/dbderrors"
	"github.com/dbd-project/dbd/internal/sqltype"
)

// redshiftCopyFromStage stages coerced rows as gzipped CSV on S3, then
// runs Redshift's `COPY ... FROM 's3://...'`, the fast path spec.md
// §4.5.1 calls out for Redshift ("COPY via object storage + GZIP").
// Called from postgresLoader.Load when a StageStorage is configured;
// Redshift speaks the Postgres wire protocol, so the connection is
// shared with postgres.go; the COPY runs as a single statement on db,
// outside any explicit transaction.
func redshiftCopyFromStage(ctx context.Context, db *sql.DB, table *dbschema.Table, records []Record, stage *StageStorage) (int64, error) {
	rows, err := coerceRecords(table, sqltype.DialectRedshift, records)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	objectKey := fmt.Sprintf("%s%s.csv.gz", stage.Prefix, table.Name)
	payload, err := gzipCSV(rows)
	if err != nil {
		return 0, err
	}
	if err := uploadToS3(ctx, stage, objectKey, payload); err != nil {
		return 0, dbderrors.WrapDatabase(err, table.Name, "load")
	}

	stageURL := fmt.Sprintf("s3://%s/%s", stage.Bucket, objectKey)
	copyStmt := fmt.Sprintf(
		"COPY %s FROM '%s' CREDENTIALS 'aws_access_key_id=%s;aws_secret_access_key=%s' GZIP CSV",
		table.Name, stageURL, stage.AccessKey, stage.SecretKey,
	)
	if _, err := db.ExecContext(ctx, copyStmt); err != nil {
		return 0, dbderrors.WrapDatabase(err, table.Name, "load")
	}
	return int64(len(rows)), nil
}
