package cache

import "fmt"

// Key namespaces. Every redis key used by the service is minted here so
// that search terms in one dimension can never collide with another.
const (
	HotBooks      = "hot_books"
	CategoryStats = "stats:categories"
	CacheHitCount = "cache_hit_count"
	CacheMissCnt  = "cache_miss_count"
	OnlineUsers   = "online_users"
	BookEvents    = "book_events"
)

func BookKey(id int64) string { return fmt.Sprintf("book:%d", id) }

func BookISBNKey(isbn string) string { return "book:isbn:" + isbn }

func SearchTitleKey(t string) string { return "book_search:title:" + t }

func SearchAuthorKey(a string) string { return "book_search:author:" + a }

func SearchCatKey(c string) string { return "book_search:category:" + c }

func HotBooksPage(limit int) string { return fmt.Sprintf("%s:%d", HotBooks, limit) }

func BorrowLockKey(id int64) string { return fmt.Sprintf("book_borrow_lock:%d", id) }

func DailyKey(day string) string { return "daily_stats:" + day }

func WeekKey(week string) string { return "stats:week:" + week }

func MonthKey(month string) string { return "stats:month:" + month }

func ActiveUsersKey(day string) string { return "active_users:" + day }

func UserActivityKey(userID int64, day string) string {
	return fmt.Sprintf("user_activity:%d:%s", userID, day)
}
