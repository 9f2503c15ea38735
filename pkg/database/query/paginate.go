package query

import "strconv"

// PaginateQuery appends id based cursor paging to a postgres query whose
// WHERE clause is fully parenthesised, eg.
//
//	"SELECT * FROM t WHERE (owner = $1)"
//
// becomes
//
//	"SELECT * FROM t WHERE (owner = $1) AND id > $2 ORDER BY id ASC LIMIT $3"
//
// with the cursor and limit appended to args.
func PaginateQuery(query string, args []interface{}, cursor Cursor, limit uint64, direction Ordering) (string, []interface{}) {
	if len(cursor) > 0 {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		if direction == Ascending {
			query += " AND id > " + placeholder
		} else {
			query += " AND id < " + placeholder
		}
		args = append(args, cursor.ToUint64())
	}

	if direction == Ascending {
		query += " ORDER BY id ASC"
	} else {
		query += " ORDER BY id DESC"
	}

	if limit > 0 {
		query += " LIMIT $" + strconv.Itoa(len(args)+1)
		args = append(args, limit)
	}

	return query, args
}
