package postgresengine

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"librarysvc/librarystore"
	"librarysvc/librarystore/postgresengine/internal/adapters"
)

// AddUser persists a new user and returns the generated id. The password
// must already be hashed by the caller. A duplicate email yields
// librarystore.ErrDuplicateEmail.
func (s Store) AddUser(ctx context.Context, name, email, passwordHash string, isAdmin bool) (int64, error) {
	sqlQuery, _, toSQLErr := s.builder().
		Insert(tableUsers).
		Rows(goqu.Record{
			colName:     name,
			colEmail:    email,
			colPassword: passwordHash,
			colIsAdmin:  isAdmin,
		}).
		Returning(colID).
		ToSQL()
	if toSQLErr != nil {
		return 0, toSQLErr
	}

	rows, queryErr := s.executeQuery(ctx, sqlQuery)
	if queryErr != nil {
		if adapters.IsUniqueViolation(queryErr) {
			return 0, errors.Join(librarystore.ErrDuplicateEmail, queryErr)
		}

		return 0, queryErr
	}
	defer s.closeRows(rows)

	var id int64
	if !rows.Next() {
		// pgx surfaces server-side errors only here, after iteration.
		rowsErr := rows.Err()
		if rowsErr == nil {
			return 0, errScanFailed
		}
		if adapters.IsUniqueViolation(rowsErr) {
			return 0, errors.Join(librarystore.ErrDuplicateEmail, rowsErr)
		}

		s.logError(logMsgDBQueryFailed, logAttrError, rowsErr.Error(), logAttrQuery, sqlQuery)

		return 0, rowsErr
	}
	if scanErr := rows.Scan(&id); scanErr != nil {
		s.logError(logMsgScanRowFailed, logAttrError, scanErr.Error())
		return 0, errors.Join(errScanFailed, scanErr)
	}

	s.logOperation("user added", logAttrUserID, id)

	return id, nil
}

// GetUserByID retrieves a user by id. Returns librarystore.ErrUserNotFound
// when no row matches.
func (s Store) GetUserByID(ctx context.Context, id int64) (librarystore.User, error) {
	return s.getUser(ctx, goqu.Ex{colID: id})
}

// GetUserByEmail retrieves a user by email. Returns
// librarystore.ErrUserNotFound when no row matches.
func (s Store) GetUserByEmail(ctx context.Context, email string) (librarystore.User, error) {
	return s.getUser(ctx, goqu.Ex{colEmail: email})
}

func (s Store) getUser(ctx context.Context, where goqu.Ex) (librarystore.User, error) {
	var empty librarystore.User

	sqlQuery, _, toSQLErr := s.builder().
		From(tableUsers).
		Select(colID, colName, colEmail, colPassword, colIsAdmin).
		Where(where).
		ToSQL()
	if toSQLErr != nil {
		return empty, toSQLErr
	}

	rows, queryErr := s.executeQuery(ctx, sqlQuery)
	if queryErr != nil {
		return empty, queryErr
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		if rowsErr := rows.Err(); rowsErr != nil {
			s.logError(logMsgDBQueryFailed, logAttrError, rowsErr.Error(), logAttrQuery, sqlQuery)
			return empty, rowsErr
		}

		return empty, librarystore.ErrUserNotFound
	}

	var user librarystore.User
	if scanErr := rows.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.IsAdmin); scanErr != nil {
		s.logError(logMsgScanRowFailed, logAttrError, scanErr.Error())
		return empty, errors.Join(errScanFailed, scanErr)
	}

	return user, nil
}

// ListUsers returns all registered users ordered by id.
func (s Store) ListUsers(ctx context.Context) ([]librarystore.User, error) {
	sqlQuery, _, toSQLErr := s.builder().
		From(tableUsers).
		Select(colID, colName, colEmail, colPassword, colIsAdmin).
		Order(goqu.I(colID).Asc()).
		ToSQL()
	if toSQLErr != nil {
		return nil, toSQLErr
	}

	rows, queryErr := s.executeQuery(ctx, sqlQuery)
	if queryErr != nil {
		return nil, queryErr
	}
	defer s.closeRows(rows)

	users := make([]librarystore.User, 0)

	for rows.Next() {
		var user librarystore.User
		if scanErr := rows.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.IsAdmin); scanErr != nil {
			s.logError(logMsgScanRowFailed, logAttrError, scanErr.Error())
			return nil, errors.Join(errScanFailed, scanErr)
		}

		users = append(users, user)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		s.logError(logMsgDBQueryFailed, logAttrError, rowsErr.Error(), logAttrQuery, sqlQuery)
		return nil, rowsErr
	}

	return users, nil
}

// UpdateUser partially updates a user. Nil fields keep the stored values;
// an update with no fields set is a no-op. The password must already be
// hashed by the caller. Returns librarystore.ErrUserNotFound when no row
// matches and librarystore.ErrDuplicateEmail on an email collision.
func (s Store) UpdateUser(ctx context.Context, id int64, update librarystore.UserUpdate) error {
	record := goqu.Record{}

	if update.Name != nil {
		record[colName] = *update.Name
	}
	if update.Email != nil {
		record[colEmail] = *update.Email
	}
	if update.PasswordHash != nil {
		record[colPassword] = *update.PasswordHash
	}

	if len(record) == 0 {
		return nil
	}

	sqlQuery, _, toSQLErr := s.builder().
		Update(tableUsers).
		Set(record).
		Where(goqu.Ex{colID: id}).
		ToSQL()
	if toSQLErr != nil {
		return toSQLErr
	}

	rowsAffected, execErr := s.executeExec(ctx, sqlQuery)
	if execErr != nil {
		if adapters.IsUniqueViolation(execErr) {
			return errors.Join(librarystore.ErrDuplicateEmail, execErr)
		}

		return execErr
	}

	if rowsAffected == 0 {
		return librarystore.ErrUserNotFound
	}

	s.logOperation("user updated", logAttrUserID, id)

	return nil
}

// DeleteUser removes a user by id. Returns librarystore.ErrUserNotFound
// when no row matches.
func (s Store) DeleteUser(ctx context.Context, id int64) error {
	sqlQuery, _, toSQLErr := s.builder().
		Delete(tableUsers).
		Where(goqu.Ex{colID: id}).
		ToSQL()
	if toSQLErr != nil {
		return toSQLErr
	}

	rowsAffected, execErr := s.executeExec(ctx, sqlQuery)
	if execErr != nil {
		return execErr
	}

	if rowsAffected == 0 {
		return librarystore.ErrUserNotFound
	}

	s.logOperation("user deleted", logAttrUserID, id)

	return nil
}
