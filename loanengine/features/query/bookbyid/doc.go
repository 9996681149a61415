// Package bookbyid implements the Book By ID query. Inactive books are not found in MemberView.
package bookbyid
