package providers

import "strconv"

// HTTPCachePrefix prefixes every cached HTTP response. Keys are
// "http:cache:<family>:<hash>" where family is the first path segment
// after /api, so a whole resource family can be dropped by pattern.
const HTTPCachePrefix = "http:cache:"

// HTTPCacheFamilyPattern matches every cached response of a route family.
func HTTPCacheFamilyPattern(family string) string {
	return HTTPCachePrefix + family + ":*"
}

// DoctorCacheKey is the cache key of a single doctor.
func DoctorCacheKey(id int64) string {
	return "doctor:" + strconv.FormatInt(id, 10)
}

// DoctorListCachePattern matches every cached doctor list.
const DoctorListCachePattern = "doctors:list:*"
