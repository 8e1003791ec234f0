package pg

import (
	"context"

	"opensms/internal/domain"
	"opensms/internal/store"
)

// FindDestination matches a dialed number against the directory of
// routable destinations. Carriers deliver numbers in several shapes, so
// the lookup tries the stored formatting variants (country prefix, trunk
// prefix, area code, bare number) and returns the first enabled match.
func (s *Store) FindDestination(ctx context.Context, number string) (store.Destination, bool, error) {
	row := s.DB.QueryRow(ctx, `
		SELECT destination_uuid, COALESCE(user_uuid::text,''), COALESCE(group_uuid::text,''), COALESCE(domain_uuid::text,'')
		FROM v_destinations
		WHERE (
			destination_prefix || destination_area_code || destination_number = $1
			OR destination_trunk_prefix || destination_area_code || destination_number = $1
			OR destination_prefix || destination_number = $1
			OR '+' || destination_prefix || destination_number = $1
			OR '+' || destination_prefix || destination_area_code || destination_number = $1
			OR destination_area_code || destination_number = $1
			OR destination_number = $1
		)
		AND destination_enabled = 'true'
		LIMIT 1
	`, number)

	var d store.Destination
	err := row.Scan(&d.DestinationUUID, &d.UserUUID, &d.GroupUUID, &d.DomainUUID)
	if err != nil {
		if noRows(err) {
			return store.Destination{}, false, nil
		}
		return store.Destination{}, false, err
	}
	return d, true, nil
}

// UserExtensions returns the enabled extensions belonging to a user,
// joined to their domains so callers can build ext@domain targets.
func (s *Store) UserExtensions(ctx context.Context, userUUID string) ([]domain.Extension, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT e.extension_uuid, e.extension, d.domain_uuid, d.domain_name
		FROM v_extensions e
		JOIN v_domains d ON d.domain_uuid = e.domain_uuid
		WHERE e.extension_uuid IN (
			SELECT extension_uuid FROM v_extension_users WHERE user_uuid=$1
		)
		AND e.enabled = 'true'
	`, userUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exts []domain.Extension
	for rows.Next() {
		ext := domain.Extension{UserUUID: userUUID}
		if err := rows.Scan(&ext.ExtensionUUID, &ext.Extension, &ext.DomainUUID, &ext.DomainName); err != nil {
			return nil, err
		}
		exts = append(exts, ext)
	}
	return exts, rows.Err()
}
