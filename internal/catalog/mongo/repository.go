// Package mongo provides the MongoDB implementation of the catalog repository.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/hatbajar/marketplace/internal/catalog"
	"github.com/hatbajar/marketplace/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Repository implements the catalog.Repository interface using MongoDB.
type Repository struct {
	products *mongo.Collection
}

// NewRepository creates a new MongoDB repository.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{products: db.Collection("products")}
}

// FindProducts retrieves products matching the base filter plus an optional
// case-insensitive name/market substring search. Results come back in the
// store's natural retrieval order.
func (r *Repository) FindProducts(ctx context.Context, base catalog.ProductFilter, search string) ([]domain.Product, error) {
	query := bson.M{}
	if base.Status != nil {
		query["status"] = *base.Status
	}
	if base.VendorEmail != nil {
		query["vendorEmail"] = *base.VendorEmail
	}
	if search != "" {
		pattern := regexp.QuoteMeta(search)
		query["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"market": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	cursor, err := r.products.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]domain.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

// CreateProduct inserts a new product document.
func (r *Repository) CreateProduct(ctx context.Context, product *domain.Product) error {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	res, err := r.products.InsertOne(ctx, product)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	product.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetProductByID retrieves one product by its hex id.
func (r *Repository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, catalog.ErrInvalidID
	}

	var product domain.Product
	err = r.products.FindOne(ctx, bson.M{"_id": oid}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return &product, nil
}

// UpdateProduct replaces the mutable fields of a product document.
func (r *Repository) UpdateProduct(ctx context.Context, product *domain.Product) error {
	res, err := r.products.UpdateOne(ctx,
		bson.M{"_id": product.ID},
		bson.M{"$set": bson.M{
			"name":        product.Name,
			"market":      product.Market,
			"status":      product.Status,
			"price":       product.Price,
			"prices":      product.Prices,
			"imageURL":    product.ImageURL,
			"description": product.Description,
			"updatedAt":   product.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

// UpdateProductStatus sets the moderation status.
func (r *Repository) UpdateProductStatus(ctx context.Context, id string, status domain.ProductStatus) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return catalog.ErrInvalidID
	}

	res, err := r.products.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("update product status: %w", err)
	}
	if res.MatchedCount == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

// DeleteProduct removes a product document. Deleting an absent id reports
// not-found rather than failing.
func (r *Repository) DeleteProduct(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return catalog.ErrInvalidID
	}

	res, err := r.products.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

// AppendPriceEntry pushes a history point and promotes it to current price.
func (r *Repository) AppendPriceEntry(ctx context.Context, id string, entry domain.PriceEntry) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return catalog.ErrInvalidID
	}

	res, err := r.products.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$push": bson.M{"prices": entry},
			"$set":  bson.M{"price": entry.Price, "updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("append price entry: %w", err)
	}
	if res.MatchedCount == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

// LowestPricePerMarket groups approved listings by market and keeps the
// cheapest one from each.
func (r *Repository) LowestPricePerMarket(ctx context.Context) ([]domain.MarketPrice, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": domain.ProductStatusApproved}}},
		{{Key: "$sort", Value: bson.D{{Key: "price", Value: 1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$market",
			"productId": bson.M{"$first": "$_id"},
			"name":      bson.M{"$first": "$name"},
			"price":     bson.M{"$first": "$price"},
			"imageURL":  bson.M{"$first": "$imageURL"},
			"createdAt": bson.M{"$first": "$createdAt"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	return r.aggregateMarketPrices(ctx, pipeline, "lowest price per market")
}

// LatestPerMarket keeps the newest approved listing per market and returns
// the freshest markets first, capped at limit.
func (r *Repository) LatestPerMarket(ctx context.Context, limit int) ([]domain.MarketPrice, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": domain.ProductStatusApproved}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$market",
			"productId": bson.M{"$first": "$_id"},
			"name":      bson.M{"$first": "$name"},
			"price":     bson.M{"$first": "$price"},
			"imageURL":  bson.M{"$first": "$imageURL"},
			"createdAt": bson.M{"$first": "$createdAt"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}

	return r.aggregateMarketPrices(ctx, pipeline, "latest per market")
}

func (r *Repository) aggregateMarketPrices(ctx context.Context, pipeline mongo.Pipeline, op string) ([]domain.MarketPrice, error) {
	cursor, err := r.products.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cursor.Close(ctx)

	rows := make([]domain.MarketPrice, 0)
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", op, err)
	}
	return rows, nil
}
